package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/personal-system/personal-backend/internal/config"
	"github.com/personal-system/personal-backend/internal/database"
	"github.com/personal-system/personal-backend/internal/logger"
	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/repository"
	"github.com/personal-system/personal-backend/internal/service"
	"github.com/personal-system/personal-backend/internal/validator"
)

var names = []string{
	"Ana Beatriz Souza", "Bruno Carvalho", "Camila Rocha", "Diego Almeida", "Eduarda Lima",
	"Felipe Martins", "Gabriela Nunes", "Henrique Teixeira", "Isabela Freitas", "João Pedro Costa",
	"Larissa Mendes", "Marcelo Ribeiro", "Natália Barros", "Otávio Pires", "Paula Cardoso",
	"Rafael Moreira", "Sabrina Duarte", "Thiago Azevedo", "Vanessa Gomes", "William Ramos",
}

var exercises = []model.PrescriptionInput{
	{ExerciseName: "Agachamento livre", Sets: 4, Reps: "8-10"},
	{ExerciseName: "Supino reto", Sets: 4, Reps: "10"},
	{ExerciseName: "Remada curvada", Sets: 3, Reps: "12"},
	{ExerciseName: "Prancha", Sets: 3, Reps: "40s"},
}

func main() {
	count := flag.Int("n", len(names), "number of students to create")
	firstCPF := flag.Int("cpf-base", 100000000, "first 9-digit CPF base; check digits are computed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.Bootstrap(os.Stderr)
		boot.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)
	planRepo := repository.NewPlanRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	// Seeding goes through the services so every rule applies; the KPI
	// cache is left to expire on its own.
	now := service.NewClock(cfg.Location())
	studentService := service.NewStudentService(studentRepo, paymentRepo, sessionRepo, nil, now, log)
	planService := service.NewPlanService(planRepo, studentRepo, now, log)
	sessionService := service.NewSessionService(sessionRepo, studentRepo, planRepo, paymentRepo, now, log)
	paymentService := service.NewPaymentService(paymentRepo, studentRepo, nil, nil, now, log)

	fmt.Printf("=== Seeding %d students ===\n", *count)

	today := model.StartOfDay(now())
	created := 0
	for i := 0; i < *count; i++ {
		name := studentName(i)
		weekly := 2 + i%4

		st, err := studentService.Create(ctx, model.CreateStudentRequest{
			Name:            name,
			CPF:             studentCPF(*firstCPF, i),
			MonthlyFee:      float64(150 + 10*(i%8)),
			WeeklyFrequency: weekly,
			DueDay:          5 + 5*(i%5),
		})
		if err != nil {
			fmt.Printf("Error creating student %s: %v\n", name, err)
			continue
		}
		created++

		plan, err := planService.Create(ctx, model.CreatePlanRequest{
			StudentID:     st.ID,
			Title:         "Treino base " + name,
			Prescriptions: exercises,
		})
		if err != nil {
			fmt.Printf("Error creating plan for %s: %v\n", name, err)
			continue
		}

		// One session every other day this month so far; every fourth one missed.
		for d, n := 0, 0; d < today.Day(); d, n = d+2, n+1 {
			at := today.AddDate(0, 0, -d).Add(7 * time.Hour)
			performed := n%4 != 3
			req := model.CreateSessionRequest{
				StudentID: st.ID,
				PlanID:    &plan.ID,
				Timestamp: &model.WallClock{Time: at},
				Performed: &performed,
			}
			if !performed {
				reason := "Imprevisto no trabalho"
				req.AbsenceReason = &reason
				req.NeedsMakeup = n%8 == 3
			}
			if _, err := sessionService.Create(ctx, req); err != nil {
				fmt.Printf("Error logging session for %s: %v\n", name, err)
			}
		}

		// Two out of three students have paid this month.
		if i%3 != 2 {
			if _, err := paymentService.Create(ctx, model.CreatePaymentRequest{
				StudentID: st.ID,
				Amount:    float64(150 + 10*(i%8)),
				Method:    string(model.PaymentMethodPIX),
			}); err != nil {
				fmt.Printf("Error registering payment for %s: %v\n", name, err)
			}
		}

		if created%10 == 0 {
			fmt.Printf("Created %d students...\n", created)
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d students.\n", created, *count)
}

// studentName cycles through names, numbering repeats from the second round.
func studentName(i int) string {
	name := names[i%len(names)]
	if i >= len(names) {
		name = fmt.Sprintf("%s %d", name, i/len(names)+1)
	}
	return name
}

// studentCPF builds the i-th CPF from a 9-digit base.
func studentCPF(base, i int) string {
	return validator.CompleteCPF(fmt.Sprintf("%09d", base+i))
}

// Package repotest provides an in-memory implementation of the repository
// interfaces for service and handler tests. It mirrors the database rules
// the services rely on: unique CPF, cascading deletes, SET NULL on a
// session's plan and all-or-nothing plan creation.
package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/repository"
)

// Store holds every table in memory behind a single mutex.
type Store struct {
	mu     sync.Mutex
	nextID int

	students      map[int]model.Student
	plans         map[int]model.Plan
	prescriptions map[int]model.Prescription
	sessions      map[int]model.Session
	payments      map[int]model.Payment
	trainers      map[int]model.Trainer

	// FailPrescriptionInsert, when set, is consulted before each prescription
	// row is written; a non-nil error aborts the enclosing write.
	FailPrescriptionInsert func(p model.Prescription) error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		students:      make(map[int]model.Student),
		plans:         make(map[int]model.Plan),
		prescriptions: make(map[int]model.Prescription),
		sessions:      make(map[int]model.Session),
		payments:      make(map[int]model.Payment),
		trainers:      make(map[int]model.Trainer),
	}
}

// Counts is the number of rows per table.
type Counts struct {
	Students, Plans, Prescriptions, Sessions, Payments int
}

// Total sums every table except trainers.
func (c Counts) Total() int {
	return c.Students + c.Plans + c.Prescriptions + c.Sessions + c.Payments
}

// Counts reports the current row counts.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Students:      len(s.students),
		Plans:         len(s.plans),
		Prescriptions: len(s.prescriptions),
		Sessions:      len(s.sessions),
		Payments:      len(s.payments),
	}
}

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

// Students returns the student repository view of the store.
func (s *Store) Students() repository.StudentRepository { return studentRepo{s} }

// Plans returns the plan repository view of the store.
func (s *Store) Plans() repository.PlanRepository { return planRepo{s} }

// Sessions returns the session repository view of the store.
func (s *Store) Sessions() repository.SessionRepository { return sessionRepo{s} }

// Payments returns the payment repository view of the store.
func (s *Store) Payments() repository.PaymentRepository { return paymentRepo{s} }

// Trainers returns the trainer repository view of the store.
func (s *Store) Trainers() repository.TrainerRepository { return trainerRepo{s} }

// ─── Students ────────────────────────────────────────────────────────────────

type studentRepo struct{ s *Store }

func (r studentRepo) Create(_ context.Context, st *model.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st.CPF != "" {
		for _, other := range r.s.students {
			if other.CPF == st.CPF {
				return repository.ErrDuplicate
			}
		}
	}
	st.ID = r.s.id()
	st.CreatedAt = time.Now()
	st.UpdatedAt = st.CreatedAt
	r.s.students[st.ID] = *st
	return nil
}

func (r studentRepo) GetByID(_ context.Context, id int) (*model.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (r studentRepo) ExistsByCPF(_ context.Context, cpf string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.students {
		if st.CPF == cpf {
			return true, nil
		}
	}
	return false, nil
}

func (r studentRepo) List(_ context.Context) ([]model.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Student, 0, len(r.s.students))
	for _, st := range r.s.students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r studentRepo) Update(_ context.Context, st *model.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.students[st.ID]
	if !ok {
		return repository.ErrNotFound
	}
	st.CPF = cur.CPF
	st.CreatedAt = cur.CreatedAt
	st.UpdatedAt = time.Now()
	r.s.students[st.ID] = *st
	return nil
}

func (r studentRepo) Delete(_ context.Context, id int) (model.CascadeResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.students[id]; !ok {
		return model.CascadeResult{}, repository.ErrNotFound
	}
	var res model.CascadeResult
	for pid, p := range r.s.plans {
		if p.StudentID != id {
			continue
		}
		res.Plans++
		res.Prescriptions += int64(r.s.deletePrescriptionsOf(pid))
		delete(r.s.plans, pid)
	}
	for sid, sess := range r.s.sessions {
		if sess.StudentID == id {
			res.Sessions++
			delete(r.s.sessions, sid)
		}
	}
	for pid, p := range r.s.payments {
		if p.StudentID == id {
			res.Payments++
			delete(r.s.payments, pid)
		}
	}
	delete(r.s.students, id)
	return res, nil
}

func (r studentRepo) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.students), nil
}

// ─── Plans ───────────────────────────────────────────────────────────────────

type planRepo struct{ s *Store }

func (s *Store) deletePrescriptionsOf(planID int) int {
	n := 0
	for id, p := range s.prescriptions {
		if p.PlanID == planID {
			delete(s.prescriptions, id)
			n++
		}
	}
	return n
}

func (s *Store) prescriptionsOf(planID int) []model.Prescription {
	out := []model.Prescription{}
	for _, p := range s.prescriptions {
		if p.PlanID == planID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r planRepo) CreateWithPrescriptions(_ context.Context, p *model.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.students[p.StudentID]; !ok {
		return repository.ErrNotFound
	}

	// Stage everything first so a failure leaves the tables untouched.
	saved := r.s.nextID
	planID := r.s.id()
	staged := make([]model.Prescription, len(p.Prescriptions))
	for i, in := range p.Prescriptions {
		in.PlanID = planID
		if err := checkPrescription(in); err != nil {
			r.s.nextID = saved
			return err
		}
		if r.s.FailPrescriptionInsert != nil {
			if err := r.s.FailPrescriptionInsert(in); err != nil {
				r.s.nextID = saved
				return err
			}
		}
		in.ID = r.s.id()
		staged[i] = in
	}

	p.ID = planID
	plan := *p
	plan.Prescriptions = nil
	r.s.plans[planID] = plan
	for _, in := range staged {
		r.s.prescriptions[in.ID] = in
	}
	p.Prescriptions = staged
	return nil
}

// checkPrescription applies the table's CHECK constraints.
func checkPrescription(p model.Prescription) error {
	if p.Sets <= 0 || strings.TrimSpace(p.ExerciseName) == "" || p.RestSeconds < 0 {
		return errors.New("repotest: prescription violates check constraint")
	}
	return nil
}

func (r planRepo) GetByID(_ context.Context, id int) (*model.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Prescriptions = r.s.prescriptionsOf(id)
	return &p, nil
}

func (r planRepo) ListByStudent(_ context.Context, studentID int) ([]model.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Plan{}
	for _, p := range r.s.plans {
		if p.StudentID == studentID {
			p.Prescriptions = r.s.prescriptionsOf(p.ID)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r planRepo) SetActive(_ context.Context, id int, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Active = active
	r.s.plans[id] = p
	return nil
}

func (r planRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deletePrescriptionsOf(id)
	for sid, sess := range r.s.sessions {
		if sess.PlanID != nil && *sess.PlanID == id {
			sess.PlanID = nil
			r.s.sessions[sid] = sess
		}
	}
	delete(r.s.plans, id)
	return nil
}

func (r planRepo) AddPrescription(_ context.Context, p *model.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[p.PlanID]; !ok {
		return repository.ErrNotFound
	}
	if err := checkPrescription(*p); err != nil {
		return err
	}
	if r.s.FailPrescriptionInsert != nil {
		if err := r.s.FailPrescriptionInsert(*p); err != nil {
			return err
		}
	}
	p.ID = r.s.id()
	r.s.prescriptions[p.ID] = *p
	return nil
}

func (r planRepo) GetPrescription(_ context.Context, id int) (*model.Prescription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prescriptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r planRepo) UpdatePrescription(_ context.Context, p *model.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.prescriptions[p.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := checkPrescription(*p); err != nil {
		return err
	}
	r.s.prescriptions[p.ID] = *p
	return nil
}

func (r planRepo) DeletePrescription(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.prescriptions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.prescriptions, id)
	return nil
}

// ─── Sessions ────────────────────────────────────────────────────────────────

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, sess *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.students[sess.StudentID]; !ok {
		return repository.ErrNotFound
	}
	sess.ID = r.s.id()
	sess.CreatedAt = time.Now()
	r.s.sessions[sess.ID] = *sess
	return nil
}

func (r sessionRepo) GetByID(_ context.Context, id int) (*model.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

func (r sessionRepo) List(_ context.Context, f model.SessionFilter) ([]model.Session, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched := []model.Session{}
	for _, sess := range r.s.sessions {
		if f.StudentID != nil && sess.StudentID != *f.StudentID {
			continue
		}
		if f.Performed != nil && sess.Performed != *f.Performed {
			continue
		}
		if f.From != nil && sess.Timestamp.Before(model.StartOfDay(*f.From)) {
			continue
		}
		if f.To != nil && sess.Timestamp.After(model.EndOfDay(*f.To)) {
			continue
		}
		matched = append(matched, sess)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := f.Offset
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r sessionRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.sessions, id)
	return nil
}

func (r sessionRepo) CountPerformedSince(_ context.Context, studentID int, since time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, sess := range r.s.sessions {
		if sess.StudentID == studentID && sess.Performed && !sess.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r sessionRepo) CountPerformedSinceByStudent(_ context.Context, since time.Time) (map[int]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[int]int)
	for _, sess := range r.s.sessions {
		if sess.Performed && !sess.Timestamp.Before(since) {
			out[sess.StudentID]++
		}
	}
	return out, nil
}

func (r sessionRepo) CountQualifying(_ context.Context, studentID int, start, end time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, sess := range r.s.sessions {
		if sess.StudentID != studentID || sess.Timestamp.Before(start) || sess.Timestamp.After(end) {
			continue
		}
		if sess.Performed || !sess.NeedsMakeup {
			n++
		}
	}
	return n, nil
}

// ─── Payments ────────────────────────────────────────────────────────────────

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(_ context.Context, p *model.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.students[p.StudentID]; !ok {
		return repository.ErrNotFound
	}
	if !p.Amount.IsPositive() {
		return errors.New("repotest: payment amount violates check constraint")
	}
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.payments[p.ID] = *p
	return nil
}

func (r paymentRepo) GetByID(_ context.Context, id int) (*model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r paymentRepo) List(_ context.Context, f model.PaymentFilter) ([]model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Payment{}
	for _, p := range r.s.payments {
		if f.StudentID != nil && p.StudentID != *f.StudentID {
			continue
		}
		if f.ReferenceMonth != "" && p.ReferenceMonth != f.ReferenceMonth {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.After(out[j].PaymentDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r paymentRepo) Update(_ context.Context, p *model.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.payments[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Amount = p.Amount
	cur.Method = p.Method
	cur.Note = p.Note
	cur.UpdatedAt = time.Now()
	r.s.payments[p.ID] = cur
	p.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r paymentRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.payments, id)
	return nil
}

func (r paymentRepo) ExistsForMonth(_ context.Context, studentID int, refMonth string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.StudentID == studentID && p.ReferenceMonth == refMonth {
			return true, nil
		}
	}
	return false, nil
}

func (r paymentRepo) StudentsPaidForMonth(_ context.Context, refMonth string) (map[int]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[int]bool)
	for _, p := range r.s.payments {
		if p.ReferenceMonth == refMonth {
			out[p.StudentID] = true
		}
	}
	return out, nil
}

func (r paymentRepo) SumBonusSessions(_ context.Context, studentID int, refMonth string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, p := range r.s.payments {
		if p.StudentID == studentID && p.ReferenceMonth == refMonth && p.BonusSessions != nil {
			n += *p.BonusSessions
		}
	}
	return n, nil
}

func (r paymentRepo) MonthTotals(_ context.Context, refMonth string) (decimal.Decimal, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	revenue := decimal.Zero
	paid := make(map[int]bool)
	for _, p := range r.s.payments {
		if p.ReferenceMonth == refMonth {
			revenue = revenue.Add(p.Amount)
			paid[p.StudentID] = true
		}
	}
	return revenue, len(paid), nil
}

func (r paymentRepo) RevenueByPaymentMonth(_ context.Context, from, to time.Time) (map[time.Time]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[time.Time]decimal.Decimal)
	for _, p := range r.s.payments {
		if p.PaymentDate.Before(from) || !p.PaymentDate.Before(to) {
			continue
		}
		month := time.Date(p.PaymentDate.Year(), p.PaymentDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		out[month] = out[month].Add(p.Amount)
	}
	return out, nil
}

// ─── Trainers ────────────────────────────────────────────────────────────────

type trainerRepo struct{ s *Store }

func (r trainerRepo) GetByUsername(_ context.Context, username string) (*model.Trainer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.trainers {
		if t.Username == username {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r trainerRepo) Create(_ context.Context, t *model.Trainer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.trainers {
		if other.Username == t.Username {
			return repository.ErrDuplicate
		}
	}
	t.ID = r.s.id()
	t.CreatedAt = time.Now()
	r.s.trainers[t.ID] = *t
	return nil
}

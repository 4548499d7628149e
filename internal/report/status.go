package report

import "github.com/personal-system/personal-backend/internal/model"

// PaymentStatus maps "has a payment row for the month" to the student's
// financial status. There are no partial payments.
func PaymentStatus(paid bool) model.FinancialStatus {
	if paid {
		return model.FinancialStatusPaid
	}
	return model.FinancialStatusOverdue
}

// Derive builds the read model of a student. It never touches the store and
// returns the same view for the same inputs.
func Derive(s model.Student, paid bool, sessionsThisMonth int) model.StudentView {
	return model.StudentView{
		Student:           s,
		FinancialStatus:   PaymentStatus(paid),
		SessionsThisMonth: sessionsThisMonth,
	}
}

// Package receipt renders paid charges into PDF receipts.
package receipt

import (
	"bytes"
	"context"
	"errors"
	"io"

	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"
)

var ErrNotPaid = errors.New("payment_not_paid")

// Service assembles and renders receipts for paid charges.
type Service struct {
	log       *zap.Logger
	payments  paymentdomain.Service
	directory directorydomain.Repository
}

func NewService(log *zap.Logger, payments paymentdomain.Service, directory directorydomain.Repository) *Service {
	return &Service{
		log:       log.Named("receipt.service"),
		payments:  payments,
		directory: directory,
	}
}

// ForPayment renders the receipt for one paid charge.
func (s *Service) ForPayment(ctx context.Context, paymentID string) (io.Reader, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != paymentdomain.StatusPaid || payment.PaidAt == nil {
		return nil, ErrNotPaid
	}

	student, err := s.directory.FindStudent(ctx, payment.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, directorydomain.ErrStudentNotFound
	}

	orgName := ""
	if org, err := s.directory.FindOrganization(ctx, student.OrganizationID); err == nil && org != nil {
		orgName = org.Name
	}

	return render(payment, student, orgName)
}

func render(payment paymentdomain.Payment, student *directorydomain.Student, orgName string) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(30,
		text.NewCol(8, "Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, orgName, props.Text{
			Size:  10,
			Align: align.Right,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Reference: "+payment.Reference, props.Text{Top: 0}),
			text.New("Date paid: "+payment.PaidAt.Format("2006-01-02"), props.Text{Top: 4}),
		),
		col.New(6).Add(
			text.New("Received from", props.Text{Style: fontstyle.Bold}),
			text.New(student.FullName, props.Text{Top: 5}),
		),
	)

	period := "one-time charge"
	if payment.PaymentMonth != nil {
		period = "billing month " + payment.PaymentMonth.String()
	}

	amount := payment.Amount.StringFixed(2) + " " + payment.CurrencyCode

	m.AddRow(15,
		text.NewCol(12, amount+" paid on "+payment.PaidAt.Format("2006-01-02"), props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(6, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	description := payment.Description
	if description == "" {
		description = period
	}
	m.AddRow(15,
		text.NewCol(6, description, props.Text{Size: 9}),
		text.NewCol(6, amount, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Total", props.Text{Size: 9}),
		text.NewCol(3, amount, props.Text{Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
)

type inputServiceImpl struct {
	compensationRepo payroll.CompensationRepository
	adjustmentRepo   payroll.AdjustmentRepository
	employeeRepo     employee.EmployeeRepository
}

func NewInputService(compensationRepo payroll.CompensationRepository, adjustmentRepo payroll.AdjustmentRepository, employeeRepo employee.EmployeeRepository) payroll.InputService {
	return &inputServiceImpl{
		compensationRepo: compensationRepo,
		adjustmentRepo:   adjustmentRepo,
		employeeRepo:     employeeRepo,
	}
}

// SetCompensation implements payroll.InputService.
func (s *inputServiceImpl) SetCompensation(ctx context.Context, req payroll.SetCompensationRequest) (payroll.Compensation, error) {
	if err := req.Validate(); err != nil {
		return payroll.Compensation{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return payroll.Compensation{}, err
	}
	effective, _ := time.Parse(dateLayout, req.EffectiveDate)

	created, err := s.compensationRepo.Create(ctx, payroll.Compensation{
		EmployeeID:    req.EmployeeID,
		BasicSalary:   req.BasicSalary,
		RateType:      payroll.RateType(req.RateType),
		EffectiveDate: effective,
	})
	if err != nil {
		return payroll.Compensation{}, fmt.Errorf("failed to create compensation: %w", err)
	}
	return created, nil
}

// CreateAdjustment implements payroll.InputService. A one-time adjustment
// without an explicit occurrence count applies once.
func (s *inputServiceImpl) CreateAdjustment(ctx context.Context, req payroll.CreateAdjustmentRequest) (payroll.Adjustment, error) {
	if err := req.Validate(); err != nil {
		return payroll.Adjustment{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return payroll.Adjustment{}, err
	}

	from, _ := time.Parse(dateLayout, req.EffectiveFrom)
	adj := payroll.Adjustment{
		EmployeeID:           req.EmployeeID,
		Category:             payroll.AdjustmentCategory(req.Category),
		Code:                 req.Code,
		Description:          req.Description,
		Amount:               req.Amount,
		Frequency:            payroll.AdjustmentFrequency(req.Frequency),
		EffectiveFrom:        from,
		RemainingOccurrences: req.Occurrences,
		RemainingBalance:     req.RemainingBalance,
		IsTaxable:            req.IsTaxable,
		IsActive:             true,
	}
	if req.EffectiveTo != nil {
		to, _ := time.Parse(dateLayout, *req.EffectiveTo)
		adj.EffectiveTo = &to
	}
	if adj.Frequency == payroll.AdjustmentOneTime && adj.RemainingOccurrences == nil {
		once := 1
		adj.RemainingOccurrences = &once
	}
	if adj.Description == "" {
		adj.Description = adj.Code
	}

	created, err := s.adjustmentRepo.Create(ctx, adj)
	if err != nil {
		return payroll.Adjustment{}, fmt.Errorf("failed to create adjustment: %w", err)
	}
	return created, nil
}

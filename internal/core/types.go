package core

import "bizflow/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Product            = domain.Product
	Sale               = domain.Sale
	SaleItem           = domain.SaleItem
	SaleDraft          = domain.SaleDraft
	CustomerInfo       = domain.CustomerInfo
	Notification       = domain.Notification
	Snapshot           = domain.Snapshot
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityProduct      = domain.EntityProduct
	EntitySale         = domain.EntitySale
	EntityNotification = domain.EntityNotification
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// NewRulesEngine returns an empty rules engine.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }

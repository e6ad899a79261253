package usecase

import (
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// Core 是核心業務邏輯層，聚合所有 use case 供 driving adapter (HTTP / gRPC) 使用
type Core struct {
	Accounts  *AccountService
	Transfers *TransferService
	Movements *MovementService
	Reports   *ReportService
	Directory *DirectoryService
}

// Dependencies 建立 Core 所需的 driven adapter
type Dependencies struct {
	Accounts  AccountRepository
	Customers CustomerRepository
	Cards     CardRepository
	Credits   CreditRepository
	Log       MovementLog

	// 為 nil 時使用本地的 DirectoryService (例如改接遠端 gRPC 目錄服務時才需設定)
	CustomerDirectory CustomerDirectory
	CardDirectory     CardDirectory
}

// NewCore 組裝所有 use case
//
// 帳戶異動與轉帳共用同一組 AccountLocks，確保同一帳戶的操作不會交錯。
func NewCore(rules *domain.Rules, deps Dependencies, opts ...Option) *Core {
	locks := NewAccountLocks()
	movements := NewMovementService(deps.Log, opts...)
	reports := NewReportService(deps.Log, opts...)
	directory := NewDirectoryService(deps.Customers, deps.Cards, deps.Credits)

	var customers CustomerDirectory = directory
	if deps.CustomerDirectory != nil {
		customers = deps.CustomerDirectory
	}
	var cards CardDirectory = directory
	if deps.CardDirectory != nil {
		cards = deps.CardDirectory
	}

	validator := NewEligibilityValidator(rules, customers, cards, reports)
	return &Core{
		Accounts:  NewAccountService(deps.Accounts, validator, rules, movements, movements, locks, opts...),
		Transfers: NewTransferService(deps.Accounts, movements, locks, opts...),
		Movements: movements,
		Reports:   reports,
		Directory: directory,
	}
}

package domain

import (
	"errors"
	"fmt"
)

// 錯誤分類 (邊界層以 errors.Is 對應到 HTTP / gRPC 狀態碼)
var (
	// ErrNotFound 資源不存在
	ErrNotFound = errors.New("not found")

	// ErrValidation 輸入不合法
	ErrValidation = errors.New("validation failed")

	// ErrBusinessRule 違反業務規則
	ErrBusinessRule = errors.New("business rule violated")

	// ErrConcurrentUpdate 樂觀鎖版本不符
	ErrConcurrentUpdate = errors.New("concurrent update")

	// ErrCollaborator 外部依賴 (DB、遠端查詢) 失敗
	ErrCollaborator = errors.New("collaborator failure")
)

var (
	// ErrAmountMustBePositive 金額必須為正數
	ErrAmountMustBePositive = fmt.Errorf("%w: amount must be positive", ErrValidation)

	// ErrInvalidAccountType 未知的帳戶類別
	ErrInvalidAccountType = fmt.Errorf("%w: invalid account type", ErrValidation)

	// ErrInvalidProfile 未知的客戶分類
	ErrInvalidProfile = fmt.Errorf("%w: invalid customer profile", ErrValidation)

	// ErrNegativeMaintenanceFee 維護費不可為負
	ErrNegativeMaintenanceFee = fmt.Errorf("%w: maintenance fee must not be negative", ErrValidation)

	// ErrNegativeMovementLimit 交易上限不可為負
	ErrNegativeMovementLimit = fmt.Errorf("%w: monthly movement limit must not be negative", ErrValidation)

	// ErrSameAccount 轉出與轉入帳戶相同
	ErrSameAccount = fmt.Errorf("%w: source and destination accounts must differ", ErrValidation)

	// ErrInvalidDateRange 日期區間不合法
	ErrInvalidDateRange = fmt.Errorf("%w: from must not be after to", ErrValidation)
)

var (
	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = fmt.Errorf("%w: account", ErrNotFound)

	// ErrCustomerNotFound 找不到客戶
	ErrCustomerNotFound = fmt.Errorf("%w: customer", ErrNotFound)

	// ErrCardNotFound 找不到信用卡
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// ErrCreditNotFound 找不到貸款
	ErrCreditNotFound = fmt.Errorf("%w: credit", ErrNotFound)

	// ErrTransactionNotFound 找不到交易紀錄
	ErrTransactionNotFound = fmt.Errorf("%w: transaction", ErrNotFound)
)

var (
	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrBusinessRule)

	// ErrNegativeResultingBalance 存款扣除手續費後餘額為負
	ErrNegativeResultingBalance = fmt.Errorf("%w: resulting balance would be negative", ErrBusinessRule)

	// ErrMovementLimitReached 當月交易次數已達上限
	ErrMovementLimitReached = fmt.Errorf("%w: monthly movement limit reached", ErrBusinessRule)

	// ErrOpeningBelowMinimum 開戶金額低於最低要求
	ErrOpeningBelowMinimum = fmt.Errorf("%w: opening balance below minimum", ErrBusinessRule)

	// ErrVIPRequiresCreditProduct VIP 客戶需持有信用卡
	ErrVIPRequiresCreditProduct = fmt.Errorf("%w: VIP customer requires a credit card", ErrBusinessRule)

	// ErrVIPDailyAverageTooLow VIP 當月日均餘額不足
	ErrVIPDailyAverageTooLow = fmt.Errorf("%w: VIP daily average balance below minimum", ErrBusinessRule)

	// ErrPYMERequiresCurrentAccount PYME 只能開活期帳戶
	ErrPYMERequiresCurrentAccount = fmt.Errorf("%w: PYME customer requires a CURRENT account", ErrBusinessRule)

	// ErrPYMERequiresCreditProduct PYME 客戶需持有信用卡
	ErrPYMERequiresCreditProduct = fmt.Errorf("%w: PYME customer requires a credit card", ErrBusinessRule)

	// ErrCrossCustomerTransfer 自有帳戶轉帳但兩帳戶屬於不同客戶
	ErrCrossCustomerTransfer = fmt.Errorf("%w: accounts belong to different customers", ErrBusinessRule)

	// ErrSameCustomerTransfer 第三方轉帳但兩帳戶屬於同一客戶
	ErrSameCustomerTransfer = fmt.Errorf("%w: accounts belong to the same customer, use own transfer", ErrBusinessRule)

	// ErrCreditLimitExceeded 超過信用額度
	ErrCreditLimitExceeded = fmt.Errorf("%w: credit limit exceeded", ErrBusinessRule)

	// ErrAccountAlreadyExists 帳戶已存在
	ErrAccountAlreadyExists = fmt.Errorf("%w: account already exists", ErrBusinessRule)
)

// CollaboratorError 包裝外部依賴錯誤，保留原始錯誤鏈
//
// 參數:
//
//	op: 失敗的操作名稱 (例如 "save account")
//	err: 原始錯誤
//
// 回傳:
//
//	error: 同時符合 ErrCollaborator 與 err 的錯誤；err 為 nil 時回傳 nil
func CollaboratorError(op string, err error) error {
	if err == nil {
		return nil
	}
	// 已分類的錯誤 (not found / 版本衝突 / 已是 collaborator) 不再包一層
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConcurrentUpdate) || errors.Is(err, ErrCollaborator) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrCollaborator, op, err)
}

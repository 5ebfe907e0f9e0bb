package accounts

import "github.com/tally-dev/tally/internal/model"

// Well-known accounts in the default chart that payroll and import post to.
const (
	OperatingChecking    = 1010
	PayrollLiabilities   = 2100
	SalesRevenue         = 4010
	WagesExpense         = 6010
	ContractLabor        = 6020
	UncategorizedExpense = 6090
)

// DefaultChart returns the default chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "service_business":
		return append(baseChart(), serviceAccounts()...)
	default:
		return append(baseChart(), retailAccounts()...)
	}
}

func baseChart() []model.Account {
	return []model.Account{
		{Number: 1010, Name: "Operating Checking", Classification: model.ClassCurrentAsset, Description: "Primary checking account"},
		{Number: 1020, Name: "Savings", Classification: model.ClassCurrentAsset},
		{Number: 1200, Name: "Accounts Receivable", Classification: model.ClassCurrentAsset},
		{Number: 1500, Name: "Furniture & Equipment", Classification: model.ClassFixedAsset},
		{Number: 1510, Name: "Accumulated Depreciation", Classification: model.ClassFixedAsset, Contra: true},
		{Number: 1800, Name: "Organization Costs", Classification: model.ClassOtherAsset},
		{Number: 1810, Name: "Accumulated Amortization", Classification: model.ClassOtherAsset, Contra: true},
		{Number: 2010, Name: "Credit Card", Classification: model.ClassCurrentLiability},
		{Number: 2100, Name: "Payroll Liabilities", Classification: model.ClassCurrentLiability, Description: "Withheld taxes not yet remitted"},
		{Number: 2500, Name: "Long-Term Loan", Classification: model.ClassLongTermLiability},
		{Number: 3010, Name: "Owner's Capital", Classification: model.ClassCapital},
		{Number: 3020, Name: "Owner's Draw", Classification: model.ClassCapital},
		{Number: 6010, Name: "Wages", Classification: model.ClassExpense, Description: "Employee gross pay"},
		{Number: 6020, Name: "Contract Labor", Classification: model.ClassExpense, Description: "Contractor payments"},
		{Number: 6030, Name: "Rent", Classification: model.ClassExpense},
		{Number: 6040, Name: "Utilities", Classification: model.ClassExpense},
		{Number: 6050, Name: "Software & Subscriptions", Classification: model.ClassExpense},
		{Number: 6060, Name: "Professional Services", Classification: model.ClassExpense, Description: "Legal, accounting, consulting"},
		{Number: 6090, Name: "Uncategorized Expense", Classification: model.ClassExpense, Description: "Imported spending awaiting review"},
	}
}

func retailAccounts() []model.Account {
	return []model.Account{
		{Number: 1300, Name: "Inventory", Classification: model.ClassCurrentAsset},
		{Number: 4010, Name: "Sales", Classification: model.ClassRevenue},
		{Number: 4020, Name: "Shipping Income", Classification: model.ClassRevenue},
		{Number: 5010, Name: "Cost of Goods Sold", Classification: model.ClassCostOfSales},
		{Number: 5020, Name: "Freight In", Classification: model.ClassCostOfSales},
	}
}

func serviceAccounts() []model.Account {
	return []model.Account{
		{Number: 4010, Name: "Service Revenue", Classification: model.ClassRevenue},
		{Number: 4030, Name: "Reimbursed Expenses", Classification: model.ClassRevenue},
		{Number: 5030, Name: "Subcontracted Services", Classification: model.ClassCostOfSales},
	}
}

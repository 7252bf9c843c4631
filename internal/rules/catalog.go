package rules

import "compliance_checker/internal/domain"

// Catalog returns the built-in Indian MSME rule set in its canonical order.
// Each call returns a fresh slice.
//
// esi-registration only encodes the employee threshold. The salary condition
// in its reason text (under ₹21,000/month) is not evaluated.
func Catalog() []domain.ComplianceRule {
	return []domain.ComplianceRule{
		{
			ID:                 "gst-registration",
			Name:               "GST Registration",
			Reason:             "Your turnover exceeds ₹40 lakhs (threshold for goods)",
			Deadline:           "Within 30 days of crossing threshold",
			RiskLevel:          domain.RiskCritical,
			PenaltyPreview:     "Penalty up to ₹25,000",
			PenaltyExplanation: "If you don't register for GST within 30 days, you could face a penalty of ₹10,000 or 10% of tax due (whichever is higher). Repeated non-compliance can lead to penalties up to ₹25,000.",
			PlainExplanation:   "GST is a tax on sales. If your business earns more than ₹40 lakhs per year, you must register with the government and charge GST on your sales. This money goes to the government, not your pocket.",
			MinTurnover:        domain.BoundAt(4_000_000),
		},
		{
			ID:                 "pf-registration",
			Name:               "Provident Fund (EPF) Registration",
			Reason:             "You have 20 or more employees",
			Deadline:           "Within 1 month of reaching 20 employees",
			RiskLevel:          domain.RiskCritical,
			PenaltyPreview:     "Penalty up to ₹5 lakh + imprisonment",
			PenaltyExplanation: "Failure to register can result in penalties up to ₹5 lakh. Continued non-compliance may lead to imprisonment for up to 3 years. You'll also owe interest on delayed contributions.",
			PlainExplanation:   "PF is like a savings account for your employees' retirement. Both you and your employees contribute a small amount each month. It's their money for later, and you're required by law to set this up.",
			MinEmployees:       domain.BoundAt(20),
		},
		{
			ID:                 "esi-registration",
			Name:               "ESI Registration",
			Reason:             "You have 10 or more employees with salary under ₹21,000/month",
			Deadline:           "Within 15 days of becoming applicable",
			RiskLevel:          domain.RiskHigh,
			PenaltyPreview:     "Penalty of 12% interest + damages",
			PenaltyExplanation: "Late registration attracts 12% annual interest on unpaid contributions. Additional damages up to 25% of arrears may be imposed. Directors can face personal liability.",
			PlainExplanation:   "ESI is health insurance for your employees. It covers medical expenses, maternity benefits, and disability support. You and your employees share the cost, and it protects them when they're sick.",
			MinEmployees:       domain.BoundAt(10),
		},
		{
			ID:                 "professional-tax",
			Name:               "Professional Tax Registration",
			Reason:             "Applicable in most Indian states for employers",
			Deadline:           "Before hiring first employee",
			RiskLevel:          domain.RiskMedium,
			PenaltyPreview:     "Penalty of ₹5 per day",
			PenaltyExplanation: "Non-payment attracts a penalty of ₹5 per day of default in most states. Some states charge higher penalties and may suspend business licenses.",
			PlainExplanation:   "Professional Tax is a small state-level tax. It's deducted from employee salaries (usually ₹200/month max). As an employer, you need to register and submit this to the state government.",
			MinEmployees:       domain.BoundAt(1),
		},
		{
			ID:                 "shops-establishment",
			Name:               "Shops & Establishment Act Registration",
			Reason:             "Required for all commercial establishments",
			Deadline:           "Within 30 days of starting business",
			RiskLevel:          domain.RiskMedium,
			PenaltyPreview:     "Fine up to ₹10,000",
			PenaltyExplanation: "Operating without registration can result in fines up to ₹10,000. Repeat offenses may lead to closure of establishment by local authorities.",
			PlainExplanation:   "This is your official license to run a shop or office. It sets rules about working hours, holidays, and employee rights. Think of it as your business's basic permit to operate.",
			MinEmployees:       domain.BoundAt(1),
		},
		{
			ID:                 "tds-compliance",
			Name:               "TDS Compliance",
			Reason:             "Required if turnover exceeds ₹1 crore",
			Deadline:           "7th of each month",
			RiskLevel:          domain.RiskCritical,
			PenaltyPreview:     "Interest + penalty equal to TDS amount",
			PenaltyExplanation: "Late payment attracts 1.5% interest per month. Failure to file returns can result in penalties equal to the TDS amount. Prosecution may follow for willful defaults.",
			PlainExplanation:   "TDS means you deduct some tax from payments you make (like salaries or contractor fees) and send it directly to the government. It's collecting tax on behalf of the government.",
			MinTurnover:        domain.BoundAt(10_000_000),
		},
		{
			ID:                 "labour-welfare-fund",
			Name:               "Labour Welfare Fund",
			Reason:             "Applicable in most states for establishments with employees",
			Deadline:           "30th June and 31st December each year",
			RiskLevel:          domain.RiskLow,
			PenaltyPreview:     "Fine up to ₹5,000",
			PenaltyExplanation: "Non-contribution attracts penalties up to ₹5,000 depending on the state. Some states may charge additional interest on delayed payments.",
			PlainExplanation:   "This is a small fund (usually ₹6-₹20 per employee per month) that goes toward worker welfare programs like education and housing for laborers.",
			MinEmployees:       domain.BoundAt(5),
		},
		{
			ID:                 "audit-requirement",
			Name:               "Tax Audit Requirement",
			Reason:             "Turnover exceeds ₹1 crore (₹10 crore if 95% digital)",
			Deadline:           "30th September each year",
			RiskLevel:          domain.RiskHigh,
			PenaltyPreview:     "Penalty of 0.5% of turnover",
			PenaltyExplanation: "Failure to get audit done attracts 0.5% of turnover as penalty, up to ₹1.5 lakh. This is in addition to interest on any tax shortfall discovered.",
			PlainExplanation:   "A tax audit is when a professional accountant checks your books to make sure everything is correct. It's mandatory for bigger businesses to ensure they're paying the right taxes.",
			MinTurnover:        domain.BoundAt(10_000_000),
		},
		{
			ID:                 "gratuity",
			Name:               "Gratuity Payment Act",
			Reason:             "Applicable to establishments with 10+ employees",
			Deadline:           "Within 30 days of employee leaving (after 5 years)",
			RiskLevel:          domain.RiskMedium,
			PenaltyPreview:     "Simple interest + penalty up to ₹20,000",
			PenaltyExplanation: "Delayed payment attracts simple interest at 10% per annum. Employers may face additional penalties up to ₹20,000 and imprisonment up to 2 years for willful default.",
			PlainExplanation:   "Gratuity is a thank-you payment to employees who work with you for 5+ years. When they leave, you owe them about 15 days' salary for each year they worked.",
			MinEmployees:       domain.BoundAt(10),
		},
		{
			ID:                 "msme-registration",
			Name:               "MSME Udyam Registration",
			Reason:             "Recommended for all MSMEs to avail government benefits",
			Deadline:           "No strict deadline (voluntary but beneficial)",
			RiskLevel:          domain.RiskLow,
			PenaltyPreview:     "No penalty, but you miss benefits",
			PenaltyExplanation: "While not mandatory, without Udyam registration you cannot access government schemes, priority sector lending, subsidy benefits, and protection under MSMED Act.",
			PlainExplanation:   "Udyam is a free government registration for small businesses. It opens doors to loans with lower interest, government tenders, and subsidies. There's no penalty, but you're missing out on benefits.",
			MinTurnover:        domain.BoundAt(0),
			MaxTurnover:        domain.BoundAt(2_500_000_000),
			MinEmployees:       domain.BoundAt(0),
		},
	}
}

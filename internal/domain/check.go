package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	NotPerformedMessage = "No compliance check yet"
	AllClearMessage     = "All clear! No critical compliances found for your business profile. Keep up the good work!"
)

type BusinessProfile struct {
	Turnover  float64 `json:"turnover"`
	Employees float64 `json:"employees"`
}

// Summary holds per-level counts of a match set.
type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

type CheckReport struct {
	ID        string            `json:"id"`
	ClientID  string            `json:"client_id,omitempty"`
	Profile   BusinessProfile   `json:"profile"`
	Matches   []ComplianceMatch `json:"matches"`
	Summary   Summary           `json:"summary"`
	CheckedAt time.Time         `json:"checked_at"`
}

// Headline renders the results header shown above the match list.
func (r *CheckReport) Headline() string {
	if r.Summary.Total == 0 {
		return AllClearMessage
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d applicable compliance", r.Summary.Total)
	if r.Summary.Total != 1 {
		b.WriteString("s")
	}
	if r.Summary.Critical > 0 {
		fmt.Fprintf(&b, " • %d critical", r.Summary.Critical)
	}
	if r.Summary.High > 0 {
		fmt.Fprintf(&b, " • %d high risk", r.Summary.High)
	}
	return b.String()
}

// CheckOutcome distinguishes "never checked" from a check with zero matches.
type CheckOutcome struct {
	Performed bool         `json:"performed"`
	Report    *CheckReport `json:"report,omitempty"`
	Message   string       `json:"message"`
}

func NotPerformed() CheckOutcome {
	return CheckOutcome{Performed: false, Message: NotPerformedMessage}
}

func Performed(report *CheckReport) CheckOutcome {
	return CheckOutcome{Performed: true, Report: report, Message: report.Headline()}
}

package memo

import (
	"fmt"
	"strings"
	"time"
)

type Layout string

const (
	LayoutPlain  Layout = "plain"
	LayoutLetter Layout = "letter"
	LayoutOffice Layout = "office"
)

func ParseLayout(v string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(v))); l {
	case LayoutPlain, LayoutLetter, LayoutOffice:
		return l, nil
	case "":
		return LayoutOffice, nil
	default:
		return "", fmt.Errorf("unknown memo layout %q", v)
	}
}

// Snapshot is the frozen view of an approved request that a memo prints.
type Snapshot struct {
	ExpedienteNumber string
	SubjectType      string
	Date             time.Time
	HolderName       string
	Position         string
	Reason           string
	PaidLeave        bool
	PeriodStart      time.Time
	PeriodEnd        time.Time
}

func (s Snapshot) PayCondition() string {
	if s.PaidLeave {
		return "Con goce de haber"
	}
	return "Sin goce de haber"
}

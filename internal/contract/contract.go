// Package contract is a local stand-in for the on-chain lending contract.
// Calls are echoed, never submitted.
package contract

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"lending-workers/internal/assessment"
)

const (
	MethodHello          = "hello"
	MethodPoolStats      = "getPoolStats"
	MethodRequestLoan    = "requestLoan"
	MethodAssessLoan     = "assessLoan"
	MethodLendingInfo    = "getLendingInfo"
	approvalCreditScore  = 650
	simulatedBlockBase   = 8500
	simulatedBlockSpread = 1000
)

// Args carries the arguments of every contract method. Unused fields are
// ignored.
type Args struct {
	Name        string  `json:"name,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Purpose     string  `json:"purpose,omitempty"`
	CreditScore int     `json:"creditScore,omitempty"`
}

// Receipt is the simulated result of submitting a call.
type Receipt struct {
	TxID        string `json:"txId"`
	BlockNumber int    `json:"blockNumber"`
	Success     bool   `json:"success"`
	Method      string `json:"method"`
	Args        Args   `json:"args"`
	AppIndex    int    `json:"appIndex"`
	Message     string `json:"message"`
}

// UnknownMethodError is returned by Call for a method the contract lacks.
type UnknownMethodError struct{ Method string }

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("contract has no method %q", e.Method)
}

type Stub struct {
	appID int
	now   func() time.Time

	mu  sync.Mutex
	src assessment.Source
}

type Option func(*Stub)

func WithClock(now func() time.Time) Option { return func(s *Stub) { s.now = now } }

func WithSource(src assessment.Source) Option { return func(s *Stub) { s.src = src } }

func New(appID int, opts ...Option) *Stub {
	s := &Stub{appID: appID, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = assessment.NewSource()
	}
	return s
}

func (s *Stub) AppID() int { return s.appID }

func (s *Stub) Hello(name string) string {
	return fmt.Sprintf("Hello, %s! Welcome to Afghan Community Lending Platform", name)
}

func (s *Stub) PoolStats() string {
	return "Afghan Lending Pool: 125,000 AFN available | 23 active loans | 94.2% success rate"
}

// RequestLoan acknowledges a request. The amount is not recorded.
func (s *Stub) RequestLoan(_ float64, purpose string) string {
	return fmt.Sprintf("Loan request submitted for %s in Afghanistan. Awaiting AI assessment...", purpose)
}

func (s *Stub) AssessLoan(creditScore int) string {
	if creditScore > approvalCreditScore {
		return "Congratulations! Loan approved. Supporting Afghan entrepreneurs!"
	}
	return "Assessment complete. Building financial inclusion in Afghanistan."
}

func (s *Stub) LendingInfo() string {
	return "Afghan Community Lending: Serving 94% unbanked population with blockchain technology"
}

// Call dispatches method and wraps its reply in a simulated receipt.
func (s *Stub) Call(method string, args Args) (Receipt, error) {
	var msg string
	switch method {
	case MethodHello:
		msg = s.Hello(args.Name)
	case MethodPoolStats:
		msg = s.PoolStats()
	case MethodRequestLoan:
		msg = s.RequestLoan(args.Amount, args.Purpose)
	case MethodAssessLoan:
		msg = s.AssessLoan(args.CreditScore)
	case MethodLendingInfo:
		msg = s.LendingInfo()
	default:
		return Receipt{}, &UnknownMethodError{Method: method}
	}

	s.mu.Lock()
	block := simulatedBlockBase + s.src.IntN(simulatedBlockSpread)
	s.mu.Unlock()

	return Receipt{
		TxID:        "ALG_" + strings.ToUpper(strconv.FormatInt(s.now().UnixMilli(), 36)),
		BlockNumber: block,
		Success:     true,
		Method:      method,
		Args:        args,
		AppIndex:    s.appID,
		Message:     msg,
	}, nil
}

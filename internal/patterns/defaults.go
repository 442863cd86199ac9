package patterns

import (
	"regexp"

	"github.com/zombor/paynotify/internal/corpus"
)

// number is the amount shape shared by the amount rules. A decimal point
// only belongs to the number when digits follow it, so a sentence ending
// in a full stop keeps its amount.
const number = `(\d[\d,]*(?:\.\d+)*)`

// senderEnd closes a sender capture at the end of the line, before the
// first token carrying digits, or before the next field label.
const senderEnd = `[ \t]*(?:\n|$|[ \t]+(?:\S*\d|เข้าบัญชี|บัญชี|วันที่|เวลา|(?i:a/c|account|at|on)\b))`

// logoTopLeft is where the supported apps draw their logo on a transfer
// confirmation screen.
var logoTopLeft = corpus.Box{X: 0.05, Y: 0.05, Width: 0.2, Height: 0.1}

var transferWords = regexp.MustCompile(`transferred|โอนเงิน|รับเงิน|เงินเข้า|ได้รับเงิน|รายการโอน`)

// Generic returns the rules used when no bank-specific rule matches.
// Order matters: the first rule with a match anywhere in the text wins.
func Generic() RuleSet {
	return RuleSet{
		Amount: []Rule{
			NewRule(`(?:THB|฿|บาท)[ \t]*`+number+`|`+number+`[ \t]*(?:THB|฿|บาท)`, 1, 2),
			NewRule(`จำนวนเงิน[\s:]*`+number, 1),
			NewRule(`(?:โอนเงิน|รับเงิน|เงินเข้า)[\s:]*`+number, 1),
			// Bare numbers are a last resort and may pick up unrelated
			// digit groups such as an account number.
			NewRule(number, 1),
		},
		AccountNumber: []Rule{
			NewRule(`(?i:a/c|account|บัญชี)[^\d\n]*(\d{3}(?:[- ]?\d+)+)`, 1),
			NewRule(`\d{3}-\d-\d{5}-\d`),
			NewRule(`\d{3}-\d{6}-\d`),
			NewRule(`\d{10}`),
			NewRule(`\d{3}-\d{3}-\d{4}`),
			NewRule(`[xX*]{3}-[xX*]-[xX*\d]{5}-[xX*\d]`),
		},
		Sender: []Rule{
			NewRule(`(?:จาก|โดย|(?i:\bfrom\b|\bby\b))[ \t:]*([^\d\n]+?)`+senderEnd, 1),
		},
		Timestamp: []Rule{
			NewRule(`\d{2}/\d{2}/\d{4} \d{2}:\d{2}`),
			NewRule(`\d{2}-\d{2}-\d{4} \d{2}:\d{2}`),
			NewRule(`\d{1,2} [ก-๙.]+ \d{2,4},? \d{1,2}:\d{2}(?::\d{2})?`),
		},
	}
}

// DefaultProfiles returns the built-in banks in text-identification
// priority order.
func DefaultProfiles() []BankProfile {
	region := func() *corpus.Box {
		b := logoTopLeft
		return &b
	}
	appRules := func() RuleSet {
		return RuleSet{
			Amount: []Rule{
				NewRule(`(?:THB|฿|บาท)[ \t]*`+number+`|`+number+`[ \t]*(?:THB|฿|บาท)`, 1, 2),
			},
			AccountNumber: []Rule{
				NewRule(`(?:a/c|account|บัญชี)[^\d]*(\d{3}[- ]?\d+(?:[- ]?\d+)+)`, 1),
			},
			Sender: []Rule{
				NewRule(`(?:จาก|from|โดย|By)[ \t:]*([^\d\n]{2,}?)`+senderEnd, 1),
			},
		}
	}

	return []BankProfile{
		{
			Code:            "SCB",
			DisplayName:     "Siam Commercial Bank",
			Keywords:        []string{"scb", "ไทยพาณิชย์", "siam commercial"},
			AppPackages:     []string{"com.scb.phone"},
			TransferKeyword: transferWords,
			LogoRegion:      region(),
			Rules:           appRules(),
		},
		{
			Code:            "KBANK",
			DisplayName:     "Kasikornbank",
			Keywords:        []string{"kbank", "กสิกร", "kasikorn"},
			AppPackages:     []string{"com.kasikorn.retail.mbanking", "com.kasikorn.retail.mbanking.wap"},
			TransferKeyword: transferWords,
			LogoRegion:      region(),
			Rules:           appRules(),
		},
		{
			Code:        "KTB",
			DisplayName: "Krungthai Bank",
			Keywords:    []string{"ktb", "กรุงไทย", "krungthai"},
			AppPackages: []string{"com.ktb.netbank"},
			LogoRegion:  region(),
		},
		{
			Code:        "BBL",
			DisplayName: "Bangkok Bank",
			Keywords:    []string{"bbl", "กรุงเทพ", "bangkok bank"},
			AppPackages: []string{"com.bbl.mobilebanking"},
			LogoRegion:  region(),
		},
		{
			Code:        "TTB",
			DisplayName: "TMBThanachart Bank",
			Keywords:    []string{"ttb", "ทหารไทย", "ธนชาต", "tmb"},
			AppPackages: []string{"com.tmb.droid.mybiz", "com.tmbbank.tmb.retail.ios"},
		},
		{
			Code:        "BAY",
			DisplayName: "Bank of Ayudhya (Krungsri)",
			Keywords:    []string{"bay", "กรุงศรี", "krungsri"},
		},
		{
			Code:        "GSB",
			DisplayName: "Government Savings Bank",
			Keywords:    []string{"gsb", "ออมสิน"},
		},
		{
			Code:        "UOB",
			DisplayName: "United Overseas Bank",
			Keywords:    []string{"uob", "ยูโอบี"},
			AppPackages: []string{"th.co.uob.uobmbk"},
		},
	}
}

// Default returns the built-in library.
func Default() *Library {
	l, err := NewLibrary(Generic(), DefaultProfiles()...)
	if err != nil {
		panic(err)
	}
	return l
}

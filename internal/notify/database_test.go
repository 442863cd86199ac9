package notify

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/zombor/paynotify/internal/transaction"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newTransaction := func(id string) *Transaction {
		amount := decimal.RequireFromString("1234.56")
		sender := "สมชาย ใจดี"
		return &Transaction{
			Record: transaction.Record{
				ID:        id,
				Bank:      "SCB",
				Amount:    &amount,
				Sender:    &sender,
				RawText:   "SCB Easy\nโอนเงิน 1,234.56 บาท",
				Source:    transaction.SourceCapture,
				CreatedAt: time.Date(2024, 1, 15, 7, 30, 0, 0, time.UTC),
			},
			ImagePath: id + ".png",
			ImageType: "image/png",
		}
	}

	Describe("SaveTransaction and GetTransaction", func() {
		It("round-trips every field", func() {
			t := newTransaction("t1")
			Expect(db.SaveTransaction(t)).To(Succeed())

			got, err := db.GetTransaction("t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Bank).To(Equal("SCB"))
			Expect(got.Amount.Equal(*t.Amount)).To(BeTrue())
			Expect(*got.Sender).To(Equal("สมชาย ใจดี"))
			Expect(got.AccountNumber).To(BeNil())
			Expect(got.RawText).To(Equal(t.RawText))
			Expect(got.ImagePath).To(Equal("t1.png"))
			Expect(got.CreatedAt.Equal(t.CreatedAt)).To(BeTrue())
		})

		It("overwrites on save with the same ID", func() {
			t := newTransaction("t1")
			Expect(db.SaveTransaction(t)).To(Succeed())
			t.Bank = "KBANK"
			Expect(db.SaveTransaction(t)).To(Succeed())

			got, err := db.GetTransaction("t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Bank).To(Equal("KBANK"))
		})

		It("reports unknown IDs", func() {
			_, err := db.GetTransaction("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListTransactions", func() {
		It("returns an empty list for a new database", func() {
			list, err := db.ListTransactions()
			Expect(err).NotTo(HaveOccurred())
			Expect(list).NotTo(BeNil())
			Expect(list).To(BeEmpty())
		})

		It("returns every transaction", func() {
			Expect(db.SaveTransaction(newTransaction("a"))).To(Succeed())
			Expect(db.SaveTransaction(newTransaction("b"))).To(Succeed())

			list, err := db.ListTransactions()
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
		})
	})

	Describe("DeleteTransaction", func() {
		It("removes the transaction", func() {
			Expect(db.SaveTransaction(newTransaction("a"))).To(Succeed())
			Expect(db.DeleteTransaction("a")).To(Succeed())

			_, err := db.GetTransaction("a")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("reports unknown IDs", func() {
			Expect(db.DeleteTransaction("missing")).To(MatchError(ErrNotFound))
		})
	})

	It("persists across reopen", func() {
		Expect(db.SaveTransaction(newTransaction("a"))).To(Succeed())
		Expect(db.Close()).To(Succeed())

		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
		_, err = db.GetTransaction("a")
		Expect(err).NotTo(HaveOccurred())
	})
})

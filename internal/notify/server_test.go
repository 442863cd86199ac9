package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"regexp"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/paynotify/internal/corpus"
	"github.com/zombor/paynotify/internal/patterns"
	"github.com/zombor/paynotify/internal/transaction"
)

func captureForm(filename, contentType string, data []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(data)
	Expect(err).NotTo(HaveOccurred())
	Expect(writer.Close()).To(Succeed())
	return body, writer.FormDataContentType()
}

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		storage     *mockStorage
		recognizer  *mockRecognizer
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		recognizer = &mockRecognizer{corpus: scbScreen()}
		auth = BasicAuth{}
	})

	JustBeforeEach(func() {
		service := NewService(db, storage, recognizer, transaction.NewAssembler(patterns.Default()), &mockNotifier{},
			WithIDGenerator(&sequentialIDs{}),
			WithTimeSource(&fakeClock{now: time.Date(2024, 1, 15, 7, 30, 0, 0, time.UTC)}),
		)
		server := NewServerWithMux(service, auth, "1.2.3", http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions} {
			ghttpServer.RouteToHandler(method, regexp.MustCompile(`^/api/`), server.ServeHTTP)
		}
	})

	AfterEach(func() {
		ghttpServer.Close()
	})

	do := func(method, path string, body io.Reader, contentType string) *http.Response {
		req, err := http.NewRequest(method, ghttpServer.URL()+path, body)
		Expect(err).NotTo(HaveOccurred())
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if auth.Username != "" {
			req.SetBasicAuth(auth.Username, auth.Password)
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, v any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(v)).To(Succeed())
	}

	Describe("GET /api/health", func() {
		It("reports the version", func() {
			resp := do(http.MethodGet, "/api/health", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var got map[string]string
			decode(resp, &got)
			Expect(got).To(Equal(map[string]string{"status": "ok", "version": "1.2.3"}))
		})
	})

	Describe("POST /api/captures", func() {
		It("records a transfer capture", func() {
			body, ct := captureForm("shot.png", "image/png", []byte("png data"))
			resp := do(http.MethodPost, "/api/captures", body, ct)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var got Transaction
			decode(resp, &got)
			Expect(got.ID).To(Equal("id-1"))
			Expect(got.Bank).To(Equal("SCB"))
			Expect(got.Amount.String()).To(Equal("1234.56"))
			Expect(got.ImageType).To(Equal("image/png"))
			Expect(storage.files).To(HaveKey("id-1.png"))
		})

		It("infers the content type from the filename", func() {
			body, ct := captureForm("slip.pdf", "", []byte("%PDF-1.7"))
			resp := do(http.MethodPost, "/api/captures", body, ct)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(db.transactions["id-1"].ImageType).To(Equal("application/pdf"))
		})

		It("answers 204 when the capture shows no transfer", func() {
			recognizer.corpus = corpus.FromLines([]string{"Home"})
			body, ct := captureForm("home.png", "image/png", []byte("png"))
			resp := do(http.MethodPost, "/api/captures", body, ct)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.transactions).To(BeEmpty())
		})

		It("answers 429 for back to back captures", func() {
			body, ct := captureForm("a.png", "image/png", []byte("png"))
			Expect(do(http.MethodPost, "/api/captures", body, ct).StatusCode).To(Equal(http.StatusCreated))

			body, ct = captureForm("b.png", "image/png", []byte("png"))
			Expect(do(http.MethodPost, "/api/captures", body, ct).StatusCode).To(Equal(http.StatusTooManyRequests))
		})

		It("rejects a form without a file", func() {
			body := &bytes.Buffer{}
			writer := multipart.NewWriter(body)
			Expect(writer.WriteField("note", "x")).To(Succeed())
			Expect(writer.Close()).To(Succeed())

			resp := do(http.MethodPost, "/api/captures", body, writer.FormDataContentType())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("reports recognition failures", func() {
			recognizer.err = errors.New("model offline")
			body, ct := captureForm("a.png", "image/png", []byte("png"))
			resp := do(http.MethodPost, "/api/captures", body, ct)
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("POST /api/corpus", func() {
		It("records recognized lines", func() {
			payload := `{"lines":[{"text":"K PLUS","box":{"x":0.1,"y":0.1,"width":0.1,"height":0.05}},{"text":"รับเงิน 50 บาท"}]}`
			resp := do(http.MethodPost, "/api/corpus", strings.NewReader(payload), "application/json")
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var got Transaction
			decode(resp, &got)
			Expect(got.Bank).To(Equal("SCB"))
			Expect(got.Source).To(Equal(transaction.SourceCorpus))
		})

		It("ignores boxes outside the image", func() {
			payload := `{"lines":[{"text":"กสิกร","box":{"x":0.1,"y":0.1,"width":2,"height":0.05}},{"text":"รับเงิน 50 บาท"}]}`
			resp := do(http.MethodPost, "/api/corpus", strings.NewReader(payload), "application/json")
			var got Transaction
			decode(resp, &got)
			Expect(got.Bank).To(Equal("KBANK"))
		})

		It("rejects an empty corpus", func() {
			resp := do(http.MethodPost, "/api/corpus", strings.NewReader(`{"lines":[]}`), "application/json")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects invalid JSON", func() {
			resp := do(http.MethodPost, "/api/corpus", strings.NewReader(`{`), "application/json")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /api/notifications", func() {
		It("records the notification", func() {
			payload := `{"app_package":"com.scb.phone","title":"เงินเข้า","body":"+1,000.00 บาท จาก นาย ก"}`
			resp := do(http.MethodPost, "/api/notifications", strings.NewReader(payload), "application/json")
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var got Transaction
			decode(resp, &got)
			Expect(got.Bank).To(Equal("SCB"))
			Expect(got.Amount.String()).To(Equal("1000"))
			Expect(*got.Sender).To(Equal("นาย ก"))
		})
	})

	Describe("POST /api/payloads", func() {
		It("records the payload", func() {
			payload := `{"bankName":"KTB","amount":250.75,"senderInfo":"ACME","timestamp":1705303800}`
			resp := do(http.MethodPost, "/api/payloads", strings.NewReader(payload), "application/json")
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var got Transaction
			decode(resp, &got)
			Expect(got.Bank).To(Equal("KTB"))
			Expect(got.Amount.StringFixed(2)).To(Equal("250.75"))
			Expect(got.OccurredAt.Unix()).To(Equal(int64(1705303800)))
		})

		It("rejects a negative amount", func() {
			resp := do(http.MethodPost, "/api/payloads", strings.NewReader(`{"amount":-1}`), "application/json")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("transactions", func() {
		BeforeEach(func() {
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			db.transactions["old"] = &Transaction{Record: transaction.Record{ID: "old", Bank: "BBL", CreatedAt: base}}
			db.transactions["new"] = &Transaction{
				Record:    transaction.Record{ID: "new", Bank: "SCB", CreatedAt: base.Add(time.Hour)},
				ImagePath: "new.png",
				ImageType: "image/png",
			}
			storage.files["new.png"] = []byte("png data")
		})

		It("lists newest first", func() {
			resp := do(http.MethodGet, "/api/transactions", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

			var got []Transaction
			decode(resp, &got)
			Expect(got).To(HaveLen(2))
			Expect(got[0].ID).To(Equal("new"))
		})

		It("returns an empty array when there are none", func() {
			db.transactions = map[string]*Transaction{}
			resp := do(http.MethodGet, "/api/transactions", nil, "")
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(string(body))).To(Equal("[]"))
		})

		It("gets one transaction", func() {
			resp := do(http.MethodGet, "/api/transactions/old", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var got Transaction
			decode(resp, &got)
			Expect(got.Bank).To(Equal("BBL"))
		})

		It("answers 404 for unknown IDs", func() {
			resp := do(http.MethodGet, "/api/transactions/missing", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("serves the capture", func() {
			resp := do(http.MethodGet, "/api/transactions/new/image", nil, "")
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("image/png"))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(Equal([]byte("png data")))
		})

		It("answers 404 for a transaction without a capture", func() {
			resp := do(http.MethodGet, "/api/transactions/old/image", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("deletes a transaction", func() {
			resp := do(http.MethodDelete, "/api/transactions/new", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.transactions).NotTo(HaveKey("new"))
			Expect(storage.files).To(BeEmpty())
		})

		It("answers 404 when deleting an unknown ID", func() {
			resp := do(http.MethodDelete, "/api/transactions/missing", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("CORS", func() {
		It("answers preflight requests", func() {
			resp := do(http.MethodOptions, "/api/transactions", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(ContainSubstring("DELETE"))
		})

		It("sets headers on normal responses", func() {
			resp := do(http.MethodGet, "/api/health", nil, "")
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "admin", Password: "secret"}
		})

		It("accepts the right credentials", func() {
			resp := do(http.MethodGet, "/api/transactions", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("rejects missing credentials", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/transactions")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})

		It("rejects wrong credentials", func() {
			req, err := http.NewRequest(http.MethodGet, ghttpServer.URL()+"/api/transactions", nil)
			Expect(err).NotTo(HaveOccurred())
			req.SetBasicAuth("admin", "wrong")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("leaves the health check open", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/health")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})
})

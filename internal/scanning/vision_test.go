package scanning

import (
	"context"
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

const visionAnswer = `{"establecimiento": "Fruteria Luna", "fecha": "01/02/2024", "productos": [{"nombre": "Manzanas", "precio": 2.1, "cantidad": 1}], "total": 2.1}`

var _ = Describe("Ollama", func() {
	var (
		server  *ghttp.Server
		scanner *Ollama
		result  *Result
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		scanner, err = NewOllama(server.URL()+"/", "llava")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		result, err = scanner.ScanReceipt(context.Background(), []byte("png bytes"), "image/png")
	})

	When("the model answers", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					var req ollamaChatRequest
					Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
					Expect(req.Model).To(Equal("llava"))
					Expect(req.Stream).To(BeFalse())
					Expect(req.Messages).To(HaveLen(2))
					Expect(req.Messages[1].Images).To(HaveLen(1))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: visionAnswer},
					Done:    true,
				}),
			))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should decode the receipt", func() {
			Expect(*result.Receipt.Establishment).To(Equal("Fruteria Luna"))
			Expect(result.Receipt.Products).To(HaveLen(1))
			Expect(result.Receipt.Total.String()).To(Equal("2.10"))
		})

		It("should not report raw text", func() {
			Expect(result.RawText).To(BeEmpty())
		})
	})

	When("the API fails", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("should return the status and body", func() {
			Expect(err).To(MatchError(ContainSubstring("status 500")))
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
		})
	})

	When("only the metadata is inspected", func() {
		BeforeEach(func() {
			server.AllowUnhandledRequests = true
		})

		It("should be named after the model", func() {
			Expect(scanner.Name()).To(Equal("ollama:llava"))
			Expect(scanner.Ready()).To(BeTrue())
		})
	})
})

var _ = Describe("Anthropic", func() {
	var (
		server  *ghttp.Server
		scanner *Anthropic
		result  *Result
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		scanner, err = NewAnthropic(server.URL(), "secret", "claude-haiku-4-5")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		result, err = scanner.ScanReceipt(context.Background(), []byte("png bytes"), "image/png")
	})

	When("the model answers", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/v1/messages"),
				ghttp.VerifyHeaderKV("x-api-key", "secret"),
				ghttp.VerifyHeaderKV("anthropic-version", "2023-06-01"),
				func(w http.ResponseWriter, r *http.Request) {
					var req anthropicRequest
					Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
					Expect(req.MaxTokens).To(Equal(1000))
					Expect(req.Messages[0].Content).To(HaveLen(2))
					Expect(req.Messages[0].Content[0].Source.MediaType).To(Equal("image/png"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"content": []map[string]string{{"type": "text", "text": "```json\n" + visionAnswer + "\n```"}},
				}),
			))
		})

		It("should decode the receipt", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(*result.Receipt.Date).To(Equal("01/02/2024"))
			Expect(result.Receipt.Products[0].Price.String()).To(Equal("2.10"))
		})
	})

	When("the API rejects the request", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusUnauthorized, map[string]any{
				"type":  "error",
				"error": map[string]string{"type": "authentication_error", "message": "invalid x-api-key"},
			}))
		})

		It("should surface the API message", func() {
			Expect(err).To(MatchError(ContainSubstring("invalid x-api-key")))
		})
	})

	When("the answer has no content", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"content": []any{}}))
		})

		It("should return an error", func() {
			Expect(err).To(MatchError(ContainSubstring("no response")))
		})
	})

	When("no API key is configured", func() {
		BeforeEach(func() {
			server.AllowUnhandledRequests = true
		})

		It("should refuse to build a scanner", func() {
			_, keyErr := NewAnthropic("", "", "")
			Expect(keyErr).To(HaveOccurred())
		})
	})
})

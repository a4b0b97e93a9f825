package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stayease/stayease-api/internal/pkg/jsoncase"
)

// JSONCaseHeader selects the key style of responses; "snake" switches to snake_case
const JSONCaseHeader = "X-Json-Case"

type bufferedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) { return w.buf.Write(b) }

func (w *bufferedWriter) WriteString(s string) (int, error) { return w.buf.WriteString(s) }

// JSONCase normalizes request body keys to camelCase before binding, and
// rewrites JSON responses to snake_case for clients that ask for it.
func JSONCase() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isJSON(c.GetHeader("Content-Type")) && c.Request.Body != nil && c.Request.Body != http.NoBody {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				RespondBadRequest(c, "Không đọc được nội dung yêu cầu")
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(rewriteKeys(body, jsoncase.ToCamelCase)))
		}

		if !strings.EqualFold(c.GetHeader(JSONCaseHeader), "snake") {
			c.Next()
			return
		}

		w := &bufferedWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()
		c.Writer = w.ResponseWriter

		out := w.buf.Bytes()
		if isJSON(w.Header().Get("Content-Type")) {
			out = rewriteKeys(out, jsoncase.ToSnakeCase)
		}
		_, _ = w.ResponseWriter.Write(out)
	}
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json")
}

// rewriteKeys converts the keys of a JSON document. Documents that do not parse
// are returned unchanged so binding reports the syntax error.
func rewriteKeys(doc []byte, convert func(interface{}) interface{}) []byte {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return doc
	}
	out, err := json.Marshal(convert(v))
	if err != nil {
		return doc
	}
	return out
}

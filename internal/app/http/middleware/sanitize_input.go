package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeJSON strips markup from every string in a JSON request body, at any depth.
// Keys in skip (passwords, base64 payloads) pass through untouched.
func SanitizeJSON(skip ...string) gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()
	skipped := make(map[string]struct{}, len(skip))
	for _, k := range skip {
		skipped[k] = struct{}{}
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		if c.Request.Body == nil || !strings.Contains(c.GetHeader("Content-Type"), "json") {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		newBody, _ := json.Marshal(sanitizeValue(policy, skipped, "", body))
		c.Request.Body = io.NopCloser(bytes.NewReader(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func sanitizeValue(p *bluemonday.Policy, skip map[string]struct{}, key string, v interface{}) interface{} {
	if _, ok := skip[key]; ok {
		return v
	}
	switch t := v.(type) {
	case string:
		return stripMarkup(p, t)
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = sanitizeValue(p, skip, k, inner)
		}
		return t
	case []interface{}:
		for i, inner := range t {
			t[i] = sanitizeValue(p, skip, key, inner)
		}
		return t
	default:
		return v
	}
}

// stripMarkup removes tags but keeps plain text literal, so "Anna & Tom" survives
// while an entity-encoded tag is decoded and stripped on the next pass.
func stripMarkup(p *bluemonday.Policy, s string) string {
	for i := 0; i < 3; i++ {
		next := html.UnescapeString(p.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/openforum/internal/forum"
)

const flashCookie = "flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Message string
	Error   bool
}

func flashFrom(res forum.Result) *Flash {
	if res.Message == "" {
		return nil
	}
	return &Flash{Message: res.Message, Error: !res.OK()}
}

// setFlash stores the result message for the page the client is redirected
// to. gin escapes cookie values on write and unescapes them on read.
func setFlash(c *gin.Context, res forum.Result) {
	f := flashFrom(res)
	if f == nil {
		return
	}
	kind := "ok"
	if f.Error {
		kind = "error"
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, kind+":"+f.Message, 60, "/", "", false, true)
}

// popFlash reads and clears the pending flash message, if any.
func popFlash(c *gin.Context) *Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	kind, msg, ok := strings.Cut(raw, ":")
	if !ok {
		return nil
	}
	return &Flash{Message: msg, Error: kind == "error"}
}

//go:build integration

package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	appsegment "audio-segment-downloader/application/segment"
	"audio-segment-downloader/infrastructure/web"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// httpContext holds test state for web scenarios
type httpContext struct {
	tempDir     string
	outputDir   string
	keepOutputs bool
	router      http.Handler
	response    *httptest.ResponseRecorder
}

// SharedHTTPContext is reset before each scenario via Before hook
var SharedHTTPContext *httpContext

func getHTTPContext() *httpContext {
	return SharedHTTPContext
}

func InitializeHTTPScenario(ctx *godog.ScenarioContext) {
	gin.SetMode(gin.TestMode)

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "http-test-*")
		if err != nil {
			return c, err
		}
		SharedHTTPContext = &httpContext{
			tempDir:     tempDir,
			outputDir:   filepath.Join(tempDir, "downloads"),
			keepOutputs: true,
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if h := getHTTPContext(); h != nil {
			os.RemoveAll(h.tempDir)
		}
		SharedHTTPContext = nil
		return c, nil
	})

	ctx.Step(`^the web interface is running$`, theWebInterfaceIsRunning)
	ctx.Step(`^the web interface is running without keeping outputs$`, theWebInterfaceIsRunningWithoutKeepingOutputs)
	ctx.Step(`^I request "([^"]*)"$`, iRequest)
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response body should be:$`, theResponseBodyShouldBe)
	ctx.Step(`^the response error should be "([^"]*)"$`, theResponseErrorShouldBe)
	ctx.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, theResponseHeaderShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, theResponseShouldContain)
	ctx.Step(`^the response should be an attachment named "([^"]*)"$`, theResponseShouldBeAnAttachmentNamed)
	ctx.Step(`^the served clip should be kept on disk$`, theServedClipShouldBeKeptOnDisk)
	ctx.Step(`^no served clip should remain on disk$`, noServedClipShouldRemainOnDisk)
}

func startWebInterface(keep bool) error {
	h := getHTTPContext()
	t := getToolContext()

	service := appsegment.NewService(
		t.fetcher,
		t.trimmer,
		statChecker{},
		filepath.Join(h.tempDir, "temp"),
	)
	handler := web.NewHandler(service, h.outputDir, web.WithKeepOutputs(keep))
	h.keepOutputs = keep
	h.router = web.NewRouter(handler, zerolog.Nop())
	return nil
}

func theWebInterfaceIsRunning() error {
	return startWebInterface(true)
}

func theWebInterfaceIsRunningWithoutKeepingOutputs() error {
	return startWebInterface(false)
}

func iRequest(target string) error {
	h := getHTTPContext()
	if h.router == nil {
		return fmt.Errorf("web interface is not running")
	}
	h.response = httptest.NewRecorder()
	h.router.ServeHTTP(h.response, httptest.NewRequest(http.MethodGet, target, nil))
	return nil
}

func theResponseStatusShouldBe(code string) error {
	h := getHTTPContext()
	want, err := strconv.Atoi(code)
	if err != nil {
		return err
	}
	if h.response.Code != want {
		return fmt.Errorf("expected status %d, got %d (body %s)", want, h.response.Code, h.response.Body.String())
	}
	return nil
}

func theResponseBodyShouldBe(body *godog.DocString) error {
	h := getHTTPContext()
	got := strings.TrimSpace(h.response.Body.String())
	if got != strings.TrimSpace(body.Content) {
		return fmt.Errorf("expected body %q, got %q", body.Content, got)
	}
	return nil
}

func theResponseErrorShouldBe(msg string) error {
	h := getHTTPContext()
	var payload map[string]string
	if err := json.Unmarshal(h.response.Body.Bytes(), &payload); err != nil {
		return fmt.Errorf("response is not JSON: %q", h.response.Body.String())
	}
	if payload["error"] != msg {
		return fmt.Errorf("expected error %q, got %q", msg, payload["error"])
	}
	return nil
}

func theResponseHeaderShouldBe(name, value string) error {
	h := getHTTPContext()
	if got := h.response.Header().Get(name); got != value {
		return fmt.Errorf("expected header %s %q, got %q", name, value, got)
	}
	return nil
}

func theResponseShouldContain(text string) error {
	h := getHTTPContext()
	if !strings.Contains(h.response.Body.String(), text) {
		return fmt.Errorf("expected response to contain %q", text)
	}
	return nil
}

func theResponseShouldBeAnAttachmentNamed(name string) error {
	return theResponseHeaderShouldBe("Content-Disposition", `attachment; filename="`+name+`"`)
}

func servedClipPath() string {
	h := getHTTPContext()
	id := h.response.Header().Get(web.RequestIDHeader)
	return filepath.Join(h.outputDir, id, "output.mp3")
}

func theServedClipShouldBeKeptOnDisk() error {
	if _, err := os.Stat(servedClipPath()); err != nil {
		return fmt.Errorf("expected served clip on disk: %v", err)
	}
	return nil
}

func noServedClipShouldRemainOnDisk() error {
	if _, err := os.Stat(servedClipPath()); !os.IsNotExist(err) {
		return fmt.Errorf("expected served clip to be removed, stat error: %v", err)
	}
	return nil
}

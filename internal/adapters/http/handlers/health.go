// Package handlers holds the gin handlers of the directory API and its
// operational endpoints.
package handlers

import (
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/globedrop/ngo-directory/internal/ports"
)

// BuildInfo is served at /-/build. Version, Commit and BuildTime come from
// ldflags; Store and Cache describe the backends this process talks to.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Store     string `json:"store,omitempty"`
	Cache     bool   `json:"cache"`
}

// NewBuildInfo fills GoVersion and, when commit was not injected, the VCS
// revision the toolchain stamped into the binary.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	if commit == "" || commit == "unknown" {
		commit = vcsRevision(commit)
	}

	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// WithBackends records the store driver and whether the organization cache
// is enabled.
func (b BuildInfo) WithBackends(store string, cache bool) BuildInfo {
	b.Store = store
	b.Cache = cache

	return b
}

func vcsRevision(fallback string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}

	return fallback
}

// HealthHandler serves the /-/ endpoints and the banner at /.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
}

func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{registry: registry, buildInfo: buildInfo}
}

type liveness struct {
	Status string `json:"status"`
}

type readiness struct {
	Status ports.HealthStatus            `json:"status"`
	Store  string                        `json:"store,omitempty"`
	Checks map[string]*ports.CheckResult `json:"checks"`
}

// Live answers as long as the process serves HTTP. It never touches the
// store.
func (h *HealthHandler) Live(c *gin.Context) {
	noStore(c)
	c.JSON(http.StatusOK, liveness{Status: "ok"})
}

// Ready runs every registered check (store, cache). Any failure answers
// 503 so the instance is taken out of rotation.
func (h *HealthHandler) Ready(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	checks := result.Checks
	if checks == nil {
		checks = map[string]*ports.CheckResult{}
	}

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	noStore(c)
	c.JSON(status, readiness{Status: result.Status, Store: h.buildInfo.Store, Checks: checks})
}

// Build returns the BuildInfo.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// Register mounts the banner at / and the operational endpoints under /-/:
// live, ready, build and the Prometheus metrics.
func (h *HealthHandler) Register(engine *gin.Engine) {
	engine.GET("/", Root)

	ops := engine.Group("/-")
	ops.GET("/live", h.Live)
	ops.GET("/ready", h.Ready)
	ops.GET("/build", h.Build)
	ops.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}

package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/Alex-Easy/diploma-try-2/internal/webserver"
)

var startedAt = time.Now()

func registerSystemRoutes() {
	webserver.ApiGET("/system/status", getSystemStatus)
}

// getSystemStatus reports host load for the operations dashboard.
func getSystemStatus(c echo.Context) error {
	status := map[string]interface{}{
		"uptime_seconds": int64(time.Since(startedAt).Seconds()),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status["mem_total"] = vm.Total
		status["mem_used"] = vm.Used
		status["mem_percent"] = vm.UsedPercent
	}

	return ok(c, status)
}

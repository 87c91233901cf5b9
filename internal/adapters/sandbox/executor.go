// Package sandbox implements the C9 sandboxed tool executor over the
// Docker Engine API.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/longregen/slovo-agent/internal/adapters/circuitbreaker"
	"github.com/longregen/slovo-agent/internal/adapters/retry"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

const (
	defaultImage       = "python:3.11-slim"
	defaultCPUPercent  = 50
	defaultMemoryMB    = 512
	cpuQuotaPeriod     = 100000
	containerStopGrace = 5 * time.Second
)

// stdoutEchoCommand is the fallback command for a manifest that names no
// entrypoint: read TOOL_PARAMS back out of the environment and print it
// as JSON to stdout, grounded on the original sandbox's python -c one-liner.
var stdoutEchoCommand = []string{
	"python", "-c",
	"import os, json; print(json.dumps(json.loads(os.environ.get('TOOL_PARAMS', '{}'))))",
}

// Executor (C9) runs an approved manifest invocation inside an isolated,
// resource-capped, network-restricted container and writes the terminal
// state onto the caller's execution log, grounded on original_source's
// DockerSandboxManager.execute_tool create -> run -> collect -> update ->
// remove loop.
type Executor struct {
	docker  *client.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewExecutor connects to the local Docker daemon. A daemon that can't be
// reached at construction time degrades the host: callers receive
// (nil, error) and substitute a nil executor, which Available() reports
// as unavailable rather than panicking on first use.
func NewExecutor(ctx context.Context) (*Executor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("docker daemon not available: %w", err)
	}
	return &Executor{
		docker:  cli,
		breaker: circuitbreaker.New(5, 30*time.Second),
	}, nil
}

func (e *Executor) Available() bool {
	return e != nil && e.docker != nil
}

// Execute runs manifest.Execution inside a container built from perms and
// params, then stamps log with the terminal outcome via log.Complete. The
// caller is responsible for persisting log before and after this call;
// Execute only mutates the in-memory struct.
func (e *Executor) Execute(ctx context.Context, manifest *models.ToolManifest, perms []*models.ToolPermission, params map[string]any, log *models.ToolExecutionLog) error {
	if !e.Available() {
		log.Complete(models.ExecutionFailure, "", "tool execution unavailable: docker daemon not reachable", nil)
		return nil
	}

	return e.breaker.Execute(func() error {
		return e.run(ctx, manifest, perms, params, log)
	})
}

func (e *Executor) run(ctx context.Context, manifest *models.ToolManifest, perms []*models.ToolPermission, params map[string]any, log *models.ToolExecutionLog) error {
	volumeName := "slovo-tool-" + manifest.ID
	if err := e.ensureVolume(ctx, volumeName); err != nil {
		log.Complete(models.ExecutionFailure, "", fmt.Sprintf("volume setup failed: %v", err), nil)
		return nil
	}

	cfg, hostCfg := buildContainerConfig(manifest, perms, params, volumeName)

	var createErr error
	var containerID string
	err := retry.WithBackoff(ctx, retry.DefaultConfig(), func() error {
		resp, err := e.docker.ContainerCreate(ctx, cfg, hostCfg, nil, nil, "")
		if err != nil {
			createErr = err
			return err
		}
		containerID = resp.ID
		return nil
	})
	if err != nil {
		log.Complete(models.ExecutionFailure, "", fmt.Sprintf("container create failed: %v", createErr), nil)
		return nil
	}
	log.ContainerRef = containerID

	if err := e.docker.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		e.removeContainer(ctx, containerID)
		log.Complete(models.ExecutionFailure, "", fmt.Sprintf("container start failed: %v", err), nil)
		return nil
	}

	statusCh, errCh := e.docker.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	var exitCode int64
	select {
	case err := <-errCh:
		if err != nil {
			e.removeContainer(ctx, containerID)
			log.Complete(models.ExecutionFailure, "", fmt.Sprintf("container wait failed: %v", err), nil)
			return nil
		}
	case status := <-statusCh:
		exitCode = status.StatusCode
	case <-ctx.Done():
		e.stopContainer(containerID)
		e.removeContainer(context.Background(), containerID)
		log.Complete(models.ExecutionTimeout, "", "tool execution timed out", nil)
		return nil
	}

	stdout, stderr := e.collectLogs(ctx, containerID)
	stats := e.collectStats(ctx, containerID)
	e.removeContainer(ctx, containerID)

	ec := int(exitCode)
	log.CPUPercent = stats.cpuPercent
	log.PeakMemoryMB = stats.peakMemoryMB

	if exitCode == 0 {
		log.Complete(models.ExecutionSuccess, stdout, "", &ec)
	} else {
		errMsg := fmt.Sprintf("container exited with code %d: %s", exitCode, stderr)
		log.Complete(models.ExecutionFailure, stdout, errMsg, &ec)
	}
	return nil
}

func (e *Executor) ensureVolume(ctx context.Context, name string) error {
	if _, err := e.docker.VolumeInspect(ctx, name); err == nil {
		return nil
	}
	_, err := e.docker.VolumeCreate(ctx, volume.CreateOptions{Name: name})
	return err
}

func buildContainerConfig(manifest *models.ToolManifest, perms []*models.ToolPermission, params map[string]any, volumeName string) (*container.Config, *container.HostConfig) {
	permMap := make(map[models.PermissionKind]string, len(perms))
	for _, p := range perms {
		permMap[p.Kind] = p.Value
	}

	networkMode := container.NetworkMode("none")
	if permMap[models.PermissionInternetAccess] == "true" {
		networkMode = container.NetworkMode("bridge")
	}

	cpuPercent := intOrDefault(permMap[models.PermissionCPUCap], defaultCPUPercent)
	memoryMB := intOrDefault(permMap[models.PermissionMemoryCap], defaultMemoryMB)
	cpuQuota := int64(float64(cpuPercent) / 100.0 * cpuQuotaPeriod)
	memBytes := int64(memoryMB) * 1024 * 1024

	image := manifest.Execution.Image
	if image == "" {
		image = defaultImage
	}

	paramsJSON := marshalParamsOrEmpty(params)

	entrypoint := manifest.Execution.Entrypoint
	if len(entrypoint) == 0 {
		entrypoint = stdoutEchoCommand
	}

	cfg := &container.Config{
		Image:      image,
		Entrypoint: entrypoint,
		Env:        []string{"TOOL_PARAMS=" + paramsJSON},
	}

	hostCfg := &container.HostConfig{
		NetworkMode:    networkMode,
		ReadonlyRootfs: true,
		CapDrop:        []string{"ALL"},
		SecurityOpt:    []string{"no-new-privileges:true"},
		Resources: container.Resources{
			CPUQuota:   cpuQuota,
			CPUPeriod:  cpuQuotaPeriod,
			Memory:     memBytes,
			MemorySwap: memBytes,
		},
		Mounts: []mount.Mount{
			{Type: mount.TypeVolume, Source: volumeName, Target: "/data"},
		},
	}

	return cfg, hostCfg
}

func intOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func marshalParamsOrEmpty(params map[string]any) string {
	if params == nil {
		return "{}"
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func (e *Executor) stopContainer(containerID string) {
	timeout := int(containerStopGrace.Seconds())
	_ = e.docker.ContainerStop(context.Background(), containerID, container.StopOptions{Timeout: &timeout})
}

func (e *Executor) removeContainer(ctx context.Context, containerID string) {
	_ = e.docker.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
}

func (e *Executor) collectLogs(ctx context.Context, containerID string) (stdout, stderr string) {
	logs, err := e.docker.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", ""
	}
	defer logs.Close()

	var outBuf, errBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&outBuf, &errBuf, io.LimitReader(logs, 1<<20)); err != nil {
		return outBuf.String(), errBuf.String()
	}
	return outBuf.String(), errBuf.String()
}

type containerStats struct {
	cpuPercent   float64
	peakMemoryMB int64
}

// collectStats degrades to zero values on any error; resource reporting
// is best-effort and never blocks execution on failure.
func (e *Executor) collectStats(ctx context.Context, containerID string) containerStats {
	resp, err := e.docker.ContainerStatsOneShot(ctx, containerID)
	if err != nil {
		return containerStats{}
	}
	defer resp.Body.Close()

	var v container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return containerStats{}
	}

	var cpuPercent float64
	cpuDelta := float64(v.CPUStats.CPUUsage.TotalUsage - v.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(v.CPUStats.SystemUsage - v.PreCPUStats.SystemUsage)
	if systemDelta > 0 && cpuDelta > 0 {
		cpuPercent = (cpuDelta / systemDelta) * float64(len(v.CPUStats.CPUUsage.PercpuUsage)) * 100.0
	}

	return containerStats{
		cpuPercent:   cpuPercent,
		peakMemoryMB: int64(v.MemoryStats.MaxUsage / (1024 * 1024)),
	}
}

var _ ports.SandboxExecutor = (*Executor)(nil)

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// bridgeRequest is the JSON payload written to the bridge command's stdin.
type bridgeRequest struct {
	ModelPath string    `json:"model_path"`
	Shape     []int     `json:"shape"`
	Input     []float32 `json:"input"`
}

// bridgeResponse is the JSON payload read from the bridge command's stdout.
type bridgeResponse struct {
	Probabilities []float32 `json:"probabilities"`
	Error         string    `json:"error,omitempty"`
}

type bridgeRunFn func(ctx context.Context, command []string, request bridgeRequest) ([]float32, error)

// runBridge is swapped out in tests so handler and registry tests do not need
// a working interpreter on the host.
var runBridge bridgeRunFn = defaultRunBridge

func parseBridgeCommand(raw string) []string {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return nil
	}
	return strings.Fields(clean)
}

func defaultRunBridge(ctx context.Context, command []string, request bridgeRequest) ([]float32, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("bridge command is not configured")
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode bridge request: %w", err)
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		errText := strings.TrimSpace(stderr.String())
		var execErr *exec.Error
		var pathErr *os.PathError
		if errors.As(runErr, &execErr) || errors.As(runErr, &pathErr) {
			return nil, fmt.Errorf("bridge command not runnable: %w", runErr)
		}
		if errText == "" {
			return nil, fmt.Errorf("bridge command failed: %w", runErr)
		}
		return nil, fmt.Errorf("bridge command failed: %w: %s", runErr, errText)
	}

	var decoded bridgeResponse
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		return nil, fmt.Errorf("decode bridge response: %w", err)
	}
	if msg := strings.TrimSpace(decoded.Error); msg != "" {
		return nil, fmt.Errorf("bridge runtime error: %s", msg)
	}
	return decoded.Probabilities, nil
}

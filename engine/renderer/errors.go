package renderer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is wrapped by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid renderer configuration")

	// ErrCapacityExceeded is wrapped by *CapacityError when a scene holds more splats than
	// the buffers were sized for. The frame is not drawn.
	ErrCapacityExceeded = errors.New("splat capacity exceeded")

	// ErrPipelineBuild is returned by every frame once shader or pipeline creation has failed.
	// The renderer does not retry.
	ErrPipelineBuild = errors.New("pipeline build failed")

	// ErrDeviceLost wraps backend errors reporting a lost GPU device. The caller owns recreation.
	ErrDeviceLost = errors.New("gpu device lost")

	// ErrSceneNotPrepared is returned when a scene cannot be bound to the renderer's pipelines.
	ErrSceneNotPrepared = errors.New("scene not prepared for rendering")
)

// ConfigurationError reports the configuration field that failed validation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// CapacityError reports a frame whose scene exceeds the configured splat capacity.
type CapacityError struct {
	Count int
	Max   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: scene has %d splats, capacity is %d", ErrCapacityExceeded, e.Count, e.Max)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// classifyBackendError wraps backend failures that report a lost device with ErrDeviceLost.
// Other resources reported as lost, such as a surface, are left unclassified.
func classifyBackendError(err error) error {
	if err == nil || errors.Is(err, ErrDeviceLost) {
		return err
	}
	if msg := strings.ToLower(err.Error()); strings.Contains(msg, "device lost") || strings.Contains(msg, "device is lost") {
		return fmt.Errorf("%w: %w", ErrDeviceLost, err)
	}
	return err
}

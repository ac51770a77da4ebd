// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/ik5/audcap/audio"
)

// DeviceInfo describes a capture device.
type DeviceInfo struct {
	Name    string
	Default bool
}

// Config selects and configures a capture device.
type Config struct {
	// Device is matched against device names, case-insensitively. Empty
	// selects the system default.
	Device     string
	SampleRate int
	Channels   int
	// ChunkFrames is the requested callback period in sample frames. The
	// backend may deliver other sizes.
	ChunkFrames int
	// QueueDepth is the number of chunks buffered between the audio
	// callback and NextChunk.
	QueueDepth int

	Logger *slog.Logger
}

func (c Config) format() audio.PCMFormat {
	return audio.PCMFormat{SampleRate: c.SampleRate, Channels: c.Channels, Sample: audio.S16}
}

// Devices lists the capture devices of the default backend.
func Devices(ctx context.Context) ([]DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	infos, err := mctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to list capture devices: %w", err)
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, DeviceInfo{Name: info.Name(), Default: info.IsDefault != 0})
	}

	return devices, nil
}

// Device is an open capture device. It implements audio.ChunkSource; chunks
// are S16 in the configured rate and channel count.
type Device struct {
	format audio.PCMFormat
	logger *slog.Logger

	mctx   *malgo.AllocatedContext
	device *malgo.Device
	queue  *chunkQueue

	mu     sync.Mutex
	closed bool
}

// Open starts capturing from the configured device.
func Open(cfg Config) (*Device, error) {
	format := cfg.format()
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "capture")

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	d := &Device{
		format: format,
		logger: logger,
		mctx:   mctx,
		queue:  newChunkQueue(cfg.QueueDepth),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(max(cfg.ChunkFrames, 0))
	deviceConfig.Alsa.NoMMap = 1

	name := "default"
	if cfg.Device != "" {
		info, err := findDevice(mctx, cfg.Device)
		if err != nil {
			d.freeContext()
			return nil, err
		}
		deviceConfig.Capture.DeviceID = info.ID.Pointer()
		name = info.Name()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: d.onData,
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		d.freeContext()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		d.freeContext()
		return nil, fmt.Errorf("failed to start capture device: %w", err)
	}

	d.device = device
	logger.Info("capture started", "device", name, "format", format.String())

	return d, nil
}

func findDevice(mctx *malgo.AllocatedContext, name string) (malgo.DeviceInfo, error) {
	infos, err := mctx.Devices(malgo.Capture)
	if err != nil {
		return malgo.DeviceInfo{}, fmt.Errorf("failed to list capture devices: %w", err)
	}

	for _, info := range infos {
		if strings.EqualFold(info.Name(), name) {
			return info, nil
		}
	}

	return malgo.DeviceInfo{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}

// onData runs on the audio thread and must not block.
func (d *Device) onData(_, input []byte, _ uint32) {
	if len(input) == 0 {
		return
	}

	if !d.queue.push(input) {
		n := d.queue.overruns.Load()
		// warn on the 1st, 2nd, 4th, 8th ... overrun
		if n&(n-1) == 0 && n != 0 {
			d.logger.Warn("capture queue overrun", "dropped", n)
		}
	}
}

func (d *Device) Format() audio.PCMFormat { return d.format }

// NextChunk returns the next captured chunk. After Close, chunks already
// queued are returned before io.EOF.
func (d *Device) NextChunk(ctx context.Context) ([]byte, error) {
	return d.queue.pop(ctx)
}

// Overruns returns the number of chunks dropped because the reader fell
// behind.
func (d *Device) Overruns() uint64 { return d.queue.overruns.Load() }

// Close stops the device and releases the backend.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if d.device != nil {
		if err := d.device.Stop(); err != nil {
			d.logger.Warn("device stop error", "error", err)
		}
		d.device.Uninit()
		d.device = nil
	}

	d.queue.close()
	d.freeContext()

	d.logger.Info("capture stopped", "overruns", d.queue.overruns.Load())

	return nil
}

func (d *Device) freeContext() {
	if d.mctx == nil {
		return
	}

	if err := d.mctx.Uninit(); err != nil {
		d.logger.Warn("malgo context uninit error", "error", err)
	}
	d.mctx.Free()
	d.mctx = nil
}

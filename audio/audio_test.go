package audio

import (
	"context"
	"errors"
	"io"
	"testing"
)

// silentSource returns a single chunk of zeros, then io.EOF.
type silentSource struct {
	format PCMFormat
	done   bool
}

func (s *silentSource) Format() PCMFormat { return s.format }
func (s *silentSource) Close() error      { return nil }

func (s *silentSource) NextChunk(context.Context) ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return make([]byte, s.format.FrameSize(100)), nil
}

// mockOpener is a test opener implementation
type mockOpener struct {
	name string
}

func (o *mockOpener) Open(r io.Reader) (ChunkSource, error) {
	return &silentSource{format: PCMFormat{SampleRate: 44100, Channels: 2, Sample: S16}}, nil
}

// failingOpener always returns an error
type failingOpener struct{}

func (o *failingOpener) Open(r io.Reader) (ChunkSource, error) {
	return nil, errors.New("open failed")
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	opener := &mockOpener{name: "wav"}

	registry.Register("wav", opener)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered opener")
	}

	if got != opener {
		t.Error("Registry.Get() returned different opener instance")
	}
}

func TestRegistry_GetNonExistent(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	_, ok := registry.Get("nonexistent")
	if ok {
		t.Error("Registry.Get() returned ok=true for non-existent format")
	}
}

func TestRegistry_MultipleFormats(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wavOpener := &mockOpener{name: "wav"}
	mp3Opener := &mockOpener{name: "mp3"}
	oggOpener := &mockOpener{name: "ogg"}

	registry.Register("wav", wavOpener)
	registry.Register("mp3", mp3Opener)
	registry.Register("ogg", oggOpener)

	tests := []struct {
		format  string
		want    Opener
		wantOK  bool
	}{
		{"wav", wavOpener, true},
		{"mp3", mp3Opener, true},
		{"ogg", oggOpener, true},
		{"flac", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, ok := registry.Get(tt.format)
			if ok != tt.wantOK {
				t.Errorf("Registry.Get(%q) ok = %v, want %v", tt.format, ok, tt.wantOK)
			}
			if tt.wantOK && got != tt.want {
				t.Errorf("Registry.Get(%q) returned wrong opener", tt.format)
			}
		})
	}
}

func TestRegistry_Overwrite(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	opener1 := &mockOpener{name: "first"}
	opener2 := &mockOpener{name: "second"}

	registry.Register("wav", opener1)
	registry.Register("wav", opener2)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed after overwrite")
	}

	if got != opener2 {
		t.Error("Registry.Get() did not return the overwritten opener")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	opener := &mockOpener{name: "test"}

	// Register concurrently
	done := make(chan bool)
	for i := range 10 {
		go func(id int) {
			registry.Register("format", opener)
			done <- true
		}(i)
	}

	// Get concurrently
	for i := range 10 {
		go func(id int) {
			_, _ = registry.Get("format")
			done <- true
		}(i)
	}

	// Wait for all goroutines
	for range 20 {
		<-done
	}

	// Verify the opener is registered
	got, ok := registry.Get("format")
	if !ok {
		t.Error("Registry.Get() failed after concurrent operations")
	}
	if got != opener {
		t.Error("Registry returned wrong opener after concurrent operations")
	}
}

func TestRegistry_EmptyFormatName(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	opener := &mockOpener{name: "test"}

	// Empty string as format name should work (no validation in current impl)
	registry.Register("", opener)

	got, ok := registry.Get("")
	if !ok {
		t.Error("Registry.Get(\"\") failed for empty format name")
	}
	if got != opener {
		t.Error("Registry.Get(\"\") returned wrong opener")
	}
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	if registry == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if registry.openers == nil {
		t.Error("NewRegistry() did not initialize openers map")
	}

	if registry.mtx == nil {
		t.Error("NewRegistry() did not initialize mutex")
	}
}

// BenchmarkRegistry_Register benchmarks registering openers
func BenchmarkRegistry_Register(b *testing.B) {
	registry := NewRegistry()
	opener := &mockOpener{}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		registry.Register("wav", opener)
	}
}

// BenchmarkRegistry_Get benchmarks retrieving openers
func BenchmarkRegistry_Get(b *testing.B) {
	registry := NewRegistry()
	opener := &mockOpener{}
	registry.Register("wav", opener)

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		_, _ = registry.Get("wav")
	}
}

// BenchmarkRegistry_GetMiss benchmarks cache misses
func BenchmarkRegistry_GetMiss(b *testing.B) {
	registry := NewRegistry()

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		_, _ = registry.Get("nonexistent")
	}
}

// BenchmarkRegistry_ConcurrentRegisterGet benchmarks concurrent operations
func BenchmarkRegistry_ConcurrentRegisterGet(b *testing.B) {
	registry := NewRegistry()
	opener := &mockOpener{}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%2 == 0 {
				registry.Register("wav", opener)
			} else {
				_, _ = registry.Get("wav")
			}
			i++
		}
	})
}

func TestRegistry_OpenThroughRegistry(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("raw", &mockOpener{})
	registry.Register("broken", &failingOpener{})

	o, _ := registry.Get("raw")
	src, err := o.Open(nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	chunk, err := src.NextChunk(t.Context())
	if err != nil {
		t.Fatalf("NextChunk() error = %v", err)
	}
	if want := src.Format().FrameSize(100); len(chunk) != want {
		t.Errorf("NextChunk() len = %d, want %d", len(chunk), want)
	}
	if _, err := src.NextChunk(t.Context()); err != io.EOF {
		t.Errorf("NextChunk() after data error = %v, want io.EOF", err)
	}

	o, _ = registry.Get("broken")
	if _, err := o.Open(nil); err == nil {
		t.Error("failing opener returned nil error")
	}
}

func TestSampleFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format SampleFormat
		name   string
		size   int
	}{
		{S16, "s16", 2},
		{F32, "f32", 4},
		{F32Planar, "f32p", 4},
		{SampleFormat(9), "SampleFormat(9)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.format.BytesPerSample(); got != tt.size {
				t.Errorf("BytesPerSample() = %d, want %d", got, tt.size)
			}
		})
	}
}

func TestParseSampleFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]SampleFormat{"s16": S16, "f32": F32, "f32p": F32Planar, "fltp": F32Planar} {
		got, err := ParseSampleFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseSampleFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseSampleFormat("u8"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseSampleFormat(u8) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPCMFormat_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  PCMFormat
		wantErr bool
	}{
		{"stereo s16", PCMFormat{44100, 2, S16}, false},
		{"mono planar", PCMFormat{8000, 1, F32Planar}, false},
		{"zero rate", PCMFormat{0, 2, S16}, true},
		{"zero channels", PCMFormat{44100, 0, S16}, true},
		{"bad sample", PCMFormat{44100, 2, SampleFormat(7)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("Validate() error = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestPCMFormat_FrameSize(t *testing.T) {
	t.Parallel()

	p := PCMFormat{SampleRate: 44100, Channels: 2, Sample: S16}
	if got := p.BytesPerFrame(); got != 4 {
		t.Errorf("BytesPerFrame() = %d, want 4", got)
	}
	if got := p.FrameSize(1024); got != 4096 {
		t.Errorf("FrameSize(1024) = %d, want 4096", got)
	}
	if got := p.String(); got != "44100Hz/2ch/s16" {
		t.Errorf("String() = %q", got)
	}
}

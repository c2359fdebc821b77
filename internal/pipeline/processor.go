package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"imgd/internal/logging"
	"imgd/internal/media"
	"imgd/internal/observability"
)

// ErrNotJPEG rejects prepare requests carrying any other format.
var ErrNotJPEG = errors.New("input is not a jpeg")

// Info describes an upload after normalization. MIME is the detected source
// type, dimensions and frames are those of the canonical image.
type Info struct {
	Width  int
	Height int
	MIME   string
	Size   int
	Frames int
}

// Prepared is a privacy-scrubbed jpeg: pixels upright, GPS dropped, the
// rest of the metadata re-embedded.
type Prepared struct {
	Bytes []byte
	MIME  string
}

// Processor runs the image operations. All state is request-scoped, so one
// instance serves concurrent requests.
type Processor struct {
	log     logging.Logger
	metrics *observability.MetricsCollector
	tracer  *observability.TracerProvider
}

func NewProcessor(log logging.Logger, metrics *observability.MetricsCollector, tracer *observability.TracerProvider) *Processor {
	return &Processor{
		log:     logging.OrNop(log),
		metrics: metrics,
		tracer:  tracer,
	}
}

// Info detects and normalizes the upload and reports its shape.
func (p *Processor) Info(ctx context.Context, data []byte) (inf Info, err error) {
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanInfo)
	defer span.End()
	defer p.guard("info", &err)
	start := time.Now()
	p.metrics.RecordUploadSize(ctx, "info", int64(len(data)))

	f, err := p.detect(ctx, data)
	if err != nil {
		p.finish(ctx, span, "info", f, start, err)
		return Info{}, err
	}
	m, err := Normalize(data, f)
	if err != nil {
		p.finish(ctx, span, "info", f, start, err)
		return Info{}, err
	}

	span.SetAttributes(observability.DimensionAttrs(m.Width(), m.Height())...)
	span.SetAttributes(attribute.Int(observability.AttrFrames, m.FrameCount()))
	p.finish(ctx, span, "info", f, start, nil)
	return Info{
		Width:  m.Width(),
		Height: m.Height(),
		MIME:   f.MIME(),
		Size:   len(data),
		Frames: m.FrameCount(),
	}, nil
}

// Fit normalizes the upload and scales it into a box×box bounding box.
func (p *Processor) Fit(ctx context.Context, data []byte, box int, animated bool) (res *FitResult, err error) {
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanFit)
	defer span.End()
	defer p.guard("fit", &err)
	start := time.Now()
	p.metrics.RecordUploadSize(ctx, "fit", int64(len(data)))

	f, err := p.detect(ctx, data)
	if err != nil {
		p.finish(ctx, span, "fit", f, start, err)
		return nil, err
	}
	m, err := Normalize(data, f)
	if err != nil {
		p.finish(ctx, span, "fit", f, start, err)
		return nil, err
	}

	res, err = Fit(m, box, animated)
	if err != nil {
		p.finish(ctx, span, "fit", f, start, err)
		return nil, err
	}
	span.SetAttributes(observability.DimensionAttrs(res.Width, res.Height)...)
	span.SetAttributes(attribute.Bool(observability.AttrAnimated, animated && m.Animated))
	p.finish(ctx, span, "fit", f, start, nil)
	return res, nil
}

// ResizeAvatars normalizes the upload and cuts the avatar renditions.
func (p *Processor) ResizeAvatars(ctx context.Context, data []byte, animated bool) (set AvatarSet, err error) {
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanResizeAvatars)
	defer span.End()
	defer p.guard("resize_avatar", &err)
	start := time.Now()
	p.metrics.RecordUploadSize(ctx, "resize_avatar", int64(len(data)))

	f, err := p.detect(ctx, data)
	if err != nil {
		p.finish(ctx, span, "resize_avatar", f, start, err)
		return nil, err
	}
	m, err := Normalize(data, f)
	if err != nil {
		p.finish(ctx, span, "resize_avatar", f, start, err)
		return nil, err
	}

	set, err = ResizeAvatars(m, animated)
	if err != nil {
		p.finish(ctx, span, "resize_avatar", f, start, err)
		return nil, err
	}
	animate := animated && m.Animated
	span.SetAttributes(attribute.Bool(observability.AttrAnimated, animate))
	for size := range set {
		p.metrics.RecordAvatarProduced(ctx, int(size), animate)
	}
	p.finish(ctx, span, "resize_avatar", f, start, nil)
	return set, nil
}

// PrepareJPEG uprights a jpeg, strips its GPS tags and re-encodes it with
// the sanitized metadata embedded.
func (p *Processor) PrepareJPEG(ctx context.Context, data []byte) (out *Prepared, err error) {
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanPrepareJPEG)
	defer span.End()
	defer p.guard("prepare_jpeg", &err)
	start := time.Now()
	p.metrics.RecordUploadSize(ctx, "prepare_jpeg", int64(len(data)))

	f, err := p.detect(ctx, data)
	if err != nil {
		p.finish(ctx, span, "prepare_jpeg", f, start, err)
		return nil, err
	}
	if f != media.FormatJPEG {
		p.finish(ctx, span, "prepare_jpeg", f, start, ErrNotJPEG)
		return nil, ErrNotJPEG
	}
	m, err := media.Decode(data, f)
	if err != nil {
		p.finish(ctx, span, "prepare_jpeg", f, start, err)
		return nil, err
	}

	rotated := AutoRotate(m)
	sanitized := media.StripTags(rotated.EXIF, media.TagGPSInfo)

	encoded, err := media.EncodeStill(rotated.Lead(), media.FormatJPEG)
	if err != nil {
		p.finish(ctx, span, "prepare_jpeg", f, start, err)
		return nil, err
	}
	p.finish(ctx, span, "prepare_jpeg", f, start, nil)
	return &Prepared{
		Bytes: media.InsertAPP1(encoded, sanitized),
		MIME:  media.FormatJPEG.MIME(),
	}, nil
}

func (p *Processor) detect(ctx context.Context, data []byte) (media.Format, error) {
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanDetect)
	defer span.End()

	f, err := media.Detect(data)
	p.metrics.RecordDetection(ctx, f.String())
	span.SetAttributes(observability.FormatAttrs(f.String())...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return media.FormatUnknown, err
	}
	return f, nil
}

func (p *Processor) finish(ctx context.Context, span trace.Span, op string, f media.Format, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(observability.ErrorAttrs(err)...)
		logging.FromContext(ctx, p.log).Warn("%s %s: %v", op, f, err)
	}
	span.SetAttributes(observability.StatusAttrs(status)...)
	p.metrics.RecordImageProcessed(ctx, op, f.String(), status, time.Since(start))
}

// guard converts a panic escaping an operation into an error so one bad
// upload cannot take the worker down.
func (p *Processor) guard(op string, err *error) {
	if r := recover(); r != nil {
		p.log.Error("%s panicked: %v", op, r)
		*err = fmt.Errorf("%s: unrecoverable processing failure", op)
	}
}

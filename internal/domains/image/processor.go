package image

import (
	"context"
	"errors"
	"fmt"

	"cinenacional-backend/internal/infrastructure/queue"
	"cinenacional-backend/internal/infrastructure/storage"
	"cinenacional-backend/internal/shared"
	"cinenacional-backend/internal/shared/crud"

	"github.com/hibiken/asynq"
)

// Processor runs the image tasks in the worker.
type Processor struct {
	store   crud.Store[Image]
	objects storage.ObjectStore
	images  *storage.ImageProcessor
	deps    crud.Deps
}

func NewProcessor(store crud.Store[Image], objects storage.ObjectStore, images *storage.ImageProcessor, deps crud.Deps) *Processor {
	return &Processor{store: store, objects: objects, images: images, deps: deps}
}

// ProcessTask renders and uploads the variants, then marks the image ready.
// An undecodable original marks it failed and is not retried.
func (p *Processor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.ProcessImagePayload
	if err := queue.Decode(t, &payload); err != nil {
		return err
	}
	logger := p.deps.Logger.With().Int64("image_id", payload.ImageID).Logger()

	img, err := p.store.FindByID(ctx, payload.ImageID, crud.ShapeDetail)
	if errors.Is(err, crud.ErrNotFound) {
		logger.Info().Msg("image deleted before processing, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load image %d: %w", payload.ImageID, err)
	}

	original, err := p.objects.Download(ctx, img.ObjectKey)
	if err != nil {
		return fmt.Errorf("download original: %w", err)
	}

	info, err := p.images.Validate(original)
	if err == nil {
		var rendered map[string][]byte
		if rendered, err = p.images.Process(original); err == nil {
			return p.publish(ctx, img, info, rendered)
		}
	}
	if errors.Is(err, storage.ErrInvalidImage) {
		logger.Warn().Err(err).Msg("image cannot be processed, marking failed")
		if markErr := p.save(ctx, img.ID, statusPayload(StatusFailed)); markErr != nil {
			return markErr
		}
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}

func (p *Processor) publish(ctx context.Context, img Image, info storage.ImageInfo, rendered map[string][]byte) error {
	variants := make(map[string]string, len(rendered))
	for _, v := range storage.Variants {
		location, err := p.objects.Upload(ctx, VariantKey(img.ObjectKey, v.Name), rendered[v.Name], "image/jpeg")
		if err != nil {
			return fmt.Errorf("upload %s variant: %w", v.Name, err)
		}
		variants[v.Name] = location
	}

	fields := statusPayload(StatusReady)
	fields.Set("width", info.Width)
	fields.Set("height", info.Height)
	fields.Set("variants", variants)
	if err := p.save(ctx, img.ID, fields); err != nil {
		return err
	}
	p.deps.Logger.Info().Int64("image_id", img.ID).Int("variants", len(variants)).Msg("image processed")
	return nil
}

func statusPayload(status string) crud.Payload {
	p := crud.NewPayload()
	p.Set("status", status)
	return p
}

// save writes fields; an image deleted meanwhile is not an error.
func (p *Processor) save(ctx context.Context, id int64, fields crud.Payload) error {
	if _, err := p.store.Update(ctx, id, fields); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("mark image %d %v: %w", id, fields.Fields["status"], err)
	}
	p.deps.Invalidate(ctx, resourceName, "movies", "people")
	return nil
}

// DeleteTask removes the stored objects of a deleted image.
func (p *Processor) DeleteTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.DeleteImagesPayload
	if err := queue.Decode(t, &payload); err != nil {
		return err
	}
	if payload.Prefix == "" || payload.Prefix == "/" || payload.Prefix == "./" {
		return fmt.Errorf("refusing to delete prefix %q: %w", payload.Prefix, asynq.SkipRetry)
	}
	if err := p.objects.DeleteByPrefix(ctx, payload.Prefix); err != nil {
		return err
	}
	p.deps.Logger.Info().Int64("image_id", payload.ImageID).Str("prefix", payload.Prefix).Msg("image objects removed")
	return nil
}

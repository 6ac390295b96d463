package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cinenacional-backend/internal/infrastructure/queue"
	"cinenacional-backend/internal/infrastructure/storage"
	"cinenacional-backend/internal/shared"
	"cinenacional-backend/internal/shared/apperror"
	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/response"
	"cinenacional-backend/internal/shared/retry"
	"cinenacional-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Uploader stores originals and hands them to the worker.
type Uploader struct {
	store     crud.Store[Image]
	objects   storage.ObjectStore
	processor *storage.ImageProcessor
	tasks     queue.Enqueuer
	deps      crud.Deps
}

func NewUploader(store crud.Store[Image], objects storage.ObjectStore, processor *storage.ImageProcessor, tasks queue.Enqueuer, deps crud.Deps) *Uploader {
	return &Uploader{store: store, objects: objects, processor: processor, tasks: tasks, deps: deps}
}

// Upload handles POST /images (multipart: file, caption, movieId, personId).
func (u *Uploader) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	form, details := parseUploadForm(c.PostForm("caption"), c.PostForm("movieId"), c.PostForm("personId"))
	if details != nil {
		response.Error(c, apperror.Validation("Datos inválidos", details))
		return
	}

	data, err := u.readFile(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	info, err := u.processor.Validate(data)
	if err != nil {
		response.Error(c, apperror.Validation("Imagen inválida", map[string]any{"file": err.Error()}))
		return
	}

	key := fmt.Sprintf("images/%s/original.%s", uuid.NewString(), info.Ext)
	location, err := u.objects.Upload(ctx, key, data, info.ContentType)
	if err != nil {
		u.fail(c, "upload", err)
		return
	}

	p := crud.NewPayload()
	p.Set("movie_id", form.MovieID)
	p.Set("person_id", form.PersonID)
	p.Set("object_key", key)
	p.Set("url", location)
	p.Set("caption", form.Caption)
	p.Set("content_type", info.ContentType)
	p.Set("width", info.Width)
	p.Set("height", info.Height)
	p.Set("status", StatusPending)
	p.Set("variants", map[string]string{})

	created, err := retry.DoValue(ctx, u.deps.Retry, func(ctx context.Context) (Image, error) {
		return u.store.Create(ctx, p)
	})
	if err != nil {
		if cleanupErr := u.objects.DeleteByPrefix(ctx, Image{ObjectKey: key}.Prefix()); cleanupErr != nil {
			u.deps.Logger.Warn().Err(cleanupErr).Str("key", key).Msg("orphan upload not removed")
		}
		u.fail(c, "upload", storeError(err))
		return
	}
	u.deps.Invalidate(ctx, resourceName)

	u.enqueue(ctx, created)
	response.Created(c, created)
}

// Reprocess handles POST /images/:id/reprocess, re-enqueueing the variants job.
func (u *Uploader) Reprocess(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.Error(c, apperror.Validation("ID inválido", map[string]any{"id": "debe ser un número entero positivo"}))
		return
	}
	img, err := retry.DoValue(ctx, u.deps.Retry, func(ctx context.Context) (Image, error) {
		return u.store.FindByID(ctx, id, crud.ShapeDetail)
	})
	if err != nil {
		u.fail(c, "reprocess", storeError(err))
		return
	}
	if err := u.tasks.Enqueue(ctx, shared.TypeProcessImage, shared.ProcessImagePayload{ImageID: img.ID, ObjectKey: img.ObjectKey}); err != nil {
		u.fail(c, "reprocess", err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"id": img.ID, "status": img.Status, "queued": true})
}

// enqueue hands the image to the worker. A failure leaves the record
// pending; POST /images/:id/reprocess queues it again.
func (u *Uploader) enqueue(ctx context.Context, img Image) {
	err := u.tasks.Enqueue(ctx, shared.TypeProcessImage, shared.ProcessImagePayload{ImageID: img.ID, ObjectKey: img.ObjectKey})
	if err != nil {
		u.deps.Logger.Error().Err(err).Int64("image_id", img.ID).Msg("image processing not queued")
	}
}

func (u *Uploader) readFile(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, apperror.Validation("Archivo requerido", map[string]any{"file": "debe adjuntar una imagen"})
	}
	if header.Size > u.processor.MaxSize {
		return nil, apperror.Validation("Imagen inválida", map[string]any{
			"file": fmt.Sprintf("el archivo supera %dMB", u.processor.MaxSize/(1024*1024)),
		})
	}
	f, err := header.Open()
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, u.processor.MaxSize+1))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return data, nil
}

func (u *Uploader) fail(c *gin.Context, action string, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		u.deps.Logger.Error().
			Err(appErr.Unwrap()).
			Str("action", action+" "+resourceName).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}
	response.Error(c, appErr)
}

func storeError(err error) error {
	if errors.Is(err, crud.ErrReference) {
		return apperror.Validation("Datos inválidos", map[string]any{"movieId": "la película o persona indicada no existe"})
	}
	return crud.StoreError(err, entityName)
}

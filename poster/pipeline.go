package poster

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/SaiNageswarS/threads-poster/caption"
	"github.com/SaiNageswarS/threads-poster/cloud"
	"github.com/SaiNageswarS/threads-poster/config"
	"github.com/SaiNageswarS/threads-poster/logger"
	"github.com/SaiNageswarS/threads-poster/threads"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Captioner interface {
	Caption(ctx context.Context, imageURL string) caption.Result
}

type Publisher interface {
	CreateImageContainer(ctx context.Context, imageURL, text string) (string, error)
	ContainerStatus(ctx context.Context, containerID string) (*threads.ContainerStatus, error)
	Publish(ctx context.Context, containerID string) (string, error)
}

// Pipeline runs list → select → presign → caption → container → wait →
// publish → delete once. The object is deleted only after Publish returned
// a post id for it.
type Pipeline struct {
	store     cloud.ObjectStore
	captioner Captioner
	publisher Publisher

	bucket        string
	prefix        string
	extension     string
	captioning    bool
	presignExpiry time.Duration
	mediaWait     time.Duration

	rnd   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

// ProvidePipeline wires the run from configuration. captioner may be nil
// when captioning is disabled.
func ProvidePipeline(cfg *config.PosterConfig, store cloud.ObjectStore, captioner Captioner, publisher Publisher) *Pipeline {
	return &Pipeline{
		store:         store,
		captioner:     captioner,
		publisher:     publisher,
		bucket:        cfg.Bucket,
		prefix:        cfg.Prefix,
		extension:     cfg.ImageExtension,
		captioning:    cfg.CaptioningEnabled() && captioner != nil,
		presignExpiry: cfg.PresignExpiry(),
		mediaWait:     cfg.MediaWait(),
		sleep:         sleepContext,
		newID:         uuid.NewString,
	}
}

// Run performs one posting attempt. The returned Report is never nil; on
// failure err is a *StageError and the report names the failed stage. A
// failed delete after publishing is recorded in Report.DeleteErr and does
// not make Run fail. Once presigned, a revocable URL is revoked before Run
// returns, whatever the outcome; a failed revoke is only logged.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: p.newID()}
	log := logger.With(zap.String("run_id", report.RunID))

	log.Info("Listing images", zap.String("bucket", p.bucket), zap.String("prefix", p.prefix), zap.String("extension", p.extension))
	images, err := cloud.ListImages(ctx, p.store, p.bucket, p.prefix, p.extension)
	if err != nil {
		log.Error("Listing failed", zap.Error(err))
		return report, report.fail(StageList, err)
	}
	log.Info("listed", zap.Int("count", len(images)))

	obj, err := SelectRandom(images, p.rnd)
	if err != nil {
		log.Error("Nothing to post", zap.String("bucket", p.bucket), zap.Error(err))
		return report, report.fail(StageSelect, err)
	}
	report.Object = obj
	log.Info("selected", zap.String("object", obj.URI()))

	presigned, err := p.store.PresignGet(ctx, obj, p.presignExpiry)
	if err != nil {
		log.Error("Presign failed", zap.String("object", obj.URI()), zap.Error(err))
		return report, report.fail(StagePresign, err)
	}
	log.Info("presigned", zap.Duration("expiry", p.presignExpiry), zap.Time("expiresAt", presigned.ExpiresAt))

	if revoker, ok := p.store.(cloud.URLRevoker); ok && presigned.ID != "" {
		defer func() {
			if err := revoker.RevokeURL(context.WithoutCancel(ctx), obj, presigned); err != nil {
				log.Warn("Could not revoke presigned URL", zap.String("object", obj.URI()), zap.Error(err))
				return
			}
			report.URLRevoked = true
			log.Info("url_revoked", zap.String("object", obj.URI()))
		}()
	}

	if p.captioning {
		report.Caption = p.captioner.Caption(ctx, presigned.URL)
		if report.Caption.Outcome == caption.Fallback {
			log.Warn("Caption fell back", zap.Error(report.Caption.Err))
		}
		log.Info("captioned", zap.Stringer("outcome", report.Caption.Outcome), zap.String("caption", report.Caption.Text))
	} else {
		report.Caption = caption.DisabledResult()
		log.Info("caption_skipped")
	}

	containerID, err := p.publisher.CreateImageContainer(ctx, presigned.URL, report.Caption.Text)
	if err != nil {
		log.Error("Container creation failed", zap.Error(err))
		return report, report.fail(StageCreateContainer, err)
	}
	report.ContainerID = containerID
	log.Info("container_created", zap.String("containerId", containerID))

	if p.mediaWait > 0 {
		log.Info("Waiting for media processing", zap.Duration("wait", p.mediaWait))
		if err := p.sleep(ctx, p.mediaWait); err != nil {
			log.Error("Interrupted while waiting for media processing", zap.Error(err))
			return report, report.fail(StageMediaWait, err)
		}
	}

	if status, err := p.publisher.ContainerStatus(ctx, containerID); err != nil {
		log.Warn("Could not confirm container status", zap.Error(err))
	} else {
		log.Info("Container status", zap.String("status", status.Status), zap.String("errorMessage", status.ErrorMessage))
	}

	postID, err := p.publisher.Publish(ctx, containerID)
	if err != nil {
		log.Error("Publish failed", zap.String("containerId", containerID), zap.Error(err))
		return report, report.fail(StagePublish, err)
	}
	report.PostID = postID
	log.Info("published", zap.String("postId", postID))

	if err := p.store.DeleteObject(ctx, obj); err != nil {
		report.DeleteErr = &StageError{Stage: StageDelete, Err: err}
		log.Error("Posted but failed to delete source object", zap.String("object", obj.URI()), zap.Error(err))
		return report, nil
	}
	report.Deleted = true
	log.Info("deleted", zap.String("object", obj.URI()))

	return report, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package blobcache

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/grindlemire/graft"
	"go.trai.ch/buildcache/internal/adapters/config"
	"go.trai.ch/buildcache/internal/adapters/logger"
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the cache service Graft node.
const NodeID graft.ID = "adapter.blobcache"

func init() {
	graft.Register(graft.Node[ports.CacheService]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.CacheService, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(ctx, settings, log), nil
		},
	})
}

// New selects the cache service for the configured backend.
// An S3 backend whose client cannot be configured degrades to Disabled.
func New(ctx context.Context, settings *domain.Settings, log ports.Logger) ports.CacheService {
	switch settings.Backend {
	case domain.BackendS3:
		client, err := newS3Client(ctx, settings.S3)
		if err != nil {
			log.Warn("S3 cache is not usable, caching is disabled")
			log.Error(err)
			return Disabled{}
		}
		return NewS3(client, settings.S3.Bucket, settings.S3.Prefix)
	case domain.BackendNone:
		return Disabled{}
	default:
		return NewLocal(settings.Local.Dir)
	}
}

func newS3Client(ctx context.Context, s domain.S3Settings) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load AWS configuration")
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		o.UsePathStyle = s.PathStyle
	}), nil
}

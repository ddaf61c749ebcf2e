package mirror

import (
	"fmt"

	"cascadelog/internal/cascade"
	"cascadelog/internal/config"
)

// NewMirrorFromConfig creates a Mirror implementation based on the mirror
// config type.
func NewMirrorFromConfig(cfg config.MirrorConfig) (cascade.Mirror, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryMirror(cfg.Name), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 mirror requires s3_bucket to be set")
		}
		return NewS3Mirror(cfg.Name, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region,
			cfg.S3AccessKeyID, cfg.S3SecretAccessKey)
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem mirror requires fs_root to be set")
		}
		return NewFileSystemMirror(cfg.Name, cfg.FSRoot)
	default:
		return nil, fmt.Errorf("unknown mirror type: %s", cfg.Type)
	}
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/quality-match/hari-client-sub000/pkg/models"
	"github.com/quality-match/hari-client-sub000/pkg/uploader"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

func runUpload(cmd *cobra.Command, flags *uploadFlags) error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := loadClientConfig()
	if err != nil {
		return err
	}

	files, err := scanMediaFiles(flags.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("%s no media files found under %s\n", yellow("!"), flags.dir)
		return nil
	}
	fmt.Printf("%s %d media files under %s\n", cyan("»"), len(files), flags.dir)

	api, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shards := flags.shards
	if shards < 1 {
		shards = 1
	}
	if shards > len(files) {
		shards = len(files)
	}

	results := make([]*uploader.UploadResults, shards)
	group, gctx := errgroup.WithContext(ctx)
	for shard := 0; shard < shards; shard++ {
		shard := shard
		group.Go(func() error {
			u := newUploader(api, flags)
			for i := shard; i < len(files); i += shards {
				if err := u.AddMedia(mediaFromFile(flags.dir, files[i])); err != nil {
					return err
				}
			}
			res, err := u.Upload(gctx)
			if err != nil {
				return fmt.Errorf("shard %d: %w", shard, err)
			}
			results[shard] = res
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	printSummary(results)
	return nil
}

func newUploader(api uploader.API, flags *uploadFlags) *uploader.Uploader {
	opts := []uploader.Option{
		uploader.WithMediaBatchSize(flags.mediaBatch),
		uploader.WithMediaObjectBatchSize(flags.objectBatch),
		uploader.WithAttributeBatchSize(flags.attributeBatch),
	}
	if flags.skipDupCheck {
		opts = append(opts,
			uploader.WithMediaDuplicateCheck(false),
			uploader.WithMediaObjectDuplicateCheck(false),
		)
	}
	if flags.objectCategory != "" {
		opts = append(opts, uploader.WithObjectCategories(flags.objectCategory))
	}
	return uploader.New(api, flags.dataset, opts...)
}

// scanMediaFiles returns the dir-relative paths of all recognized media
// files, sorted for stable shard assignment.
func scanMediaFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// mediaFromFile builds a media entity whose back reference is the file's
// dir-relative path, stable across reruns from the same root.
func mediaFromFile(dir, rel string) *models.Media {
	media := models.NewMedia(filepath.ToSlash(rel), models.MediaTypeImage)
	media.FilePath = filepath.Join(dir, rel)
	media.Name = filepath.Base(rel)
	return media
}

func printSummary(results []*uploader.UploadResults) {
	merged := &uploader.UploadResults{}
	mediaParts := make([]*models.BulkResponse, 0, len(results))
	objectParts := make([]*models.BulkResponse, 0, len(results))
	attributeParts := make([]*models.BulkResponse, 0, len(results))
	for _, res := range results {
		if res == nil {
			continue
		}
		mediaParts = append(mediaParts, res.Medias)
		objectParts = append(objectParts, res.MediaObjects)
		attributeParts = append(attributeParts, res.Attributes)
	}
	merged.Medias = uploader.MergeBulkResponses(mediaParts...)
	merged.MediaObjects = uploader.MergeBulkResponses(objectParts...)
	merged.Attributes = uploader.MergeBulkResponses(attributeParts...)

	fmt.Println(bold("Upload summary"))
	printTier("medias", merged.Medias)
	printTier("media objects", merged.MediaObjects)
	printTier("attributes", merged.Attributes)
}

func printTier(name string, resp *models.BulkResponse) {
	if resp.Summary.Total == 0 {
		return
	}
	statusStr := string(resp.Status)
	switch resp.Status {
	case models.BulkStatusSuccess:
		statusStr = green(statusStr)
	case models.BulkStatusPartialSuccess:
		statusStr = yellow(statusStr)
	default:
		statusStr = red(statusStr)
	}
	fmt.Printf("  %-14s %s  %d total, %d ok, %d failed\n",
		name, statusStr, resp.Summary.Total, resp.Summary.Successful, resp.Summary.Failed)

	conflicts := 0
	for _, result := range resp.Results {
		if result.Status == models.ItemStatusConflict {
			conflicts++
		}
	}
	if conflicts > 0 {
		fmt.Printf("  %-14s %s  %d already existed, skipped\n", "", yellow("·"), conflicts)
	}
}

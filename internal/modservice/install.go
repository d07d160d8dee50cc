package modservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/archive"
	"github.com/starford/modsync/internal/engine"
	"github.com/starford/modsync/internal/manifest"
	"github.com/starford/modsync/internal/models"
)

// InstalledMod is a standard package handled by an install run.
type InstalledMod struct {
	Name     string `json:"name"`
	UUID     string `json:"uuid"`
	Inactive bool   `json:"inactive"`
}

// Failure is a package the run skipped because of an error.
type Failure struct {
	Package string `json:"package"`
	Err     error  `json:"-"`
}

// InstallReport summarizes an install or update run.
type InstallReport struct {
	Update   bool           `json:"update"`
	Standard []InstalledMod `json:"standard"`
	PakOnly  []string       `json:"pak_only"`
	Skipped  []string       `json:"skipped"`
	Failed   []Failure      `json:"failed"`
}

// Empty reports whether the run did nothing at all.
func (r *InstallReport) Empty() bool {
	return len(r.Standard) == 0 && len(r.PakOnly) == 0 && len(r.Failed) == 0
}

// Install processes every archive in the mods dir. Packages that fail
// validation are reported and skipped; other errors abort the run.
// With update set, archives are re-extracted, paks are overwritten and
// installed mods have their updated_at touched.
func (s *Service) Install(ctx context.Context, update bool) (*InstallReport, error) {
	zips, err := filepath.Glob(filepath.Join(s.layout.ModsPath(), "*.zip"))
	if err != nil {
		return nil, err
	}
	sort.Strings(zips)

	if update {
		s.logger.Info("Running an update. All mods inside the mods folder will be re-processed.")
	}

	report := &InstallReport{Update: update}
	for _, zip := range zips {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		name := strings.TrimSuffix(filepath.Base(zip), filepath.Ext(zip))
		s.logger.Info("==== Processing " + name + " ====")

		if err := s.installPackage(ctx, zip, name, update, report); err != nil {
			if !apperr.IsOperational(err) {
				return report, err
			}
			s.logger.Error("Skipping package", slog.String("package", name), slog.String("error", err.Error()))
			s.record(ctx, engine.Install{}.Name(), &engine.Result{Name: name}, err)
			report.Failed = append(report.Failed, Failure{Package: name, Err: err})
		}
	}
	return report, nil
}

func (s *Service) installPackage(ctx context.Context, zip, name string, update bool, report *InstallReport) error {
	pkg, err := s.unpack(zip, name, update)
	if err != nil {
		return err
	}

	res, err := s.Run(ctx, engine.Install{Metadata: pkg.Metadata, Update: update})
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		s.logger.Warn(w)
	}
	if pkg.Metadata != nil && res.Outcome == engine.AlreadyInState {
		s.logger.Info("Mod is marked as installed. Skipping.")
		report.Skipped = append(report.Skipped, name)
		return nil
	}

	copied, err := s.copyPaks(pkg.Dir, update)
	if err != nil {
		return err
	}
	if pkg.Metadata == nil {
		if copied {
			report.PakOnly = append(report.PakOnly, name)
		}
		return nil
	}
	report.Standard = append(report.Standard, InstalledMod{
		Name:     name,
		UUID:     pkg.Metadata.UUID,
		Inactive: res.Inactive,
	})
	return nil
}

// unpack extracts the archive unless an earlier run already did and
// reads the optional sidecar metadata.
func (s *Service) unpack(zip, name string, update bool) (*models.Package, error) {
	dir := s.layout.DumpPath(name)
	if _, err := os.Stat(dir); err == nil && !update {
		s.logger.Info("Zip file already extracted. Skipping.")
	} else {
		s.logger.Info("Extracting...")
		if _, err := archive.Extract(zip, dir); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
		}
		s.logger.Info("Successfully extracted zip file.")
	}

	pkg := &models.Package{Name: name, Dir: dir}
	data, err := os.ReadFile(filepath.Join(dir, manifest.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return pkg, nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Found an info.json file.")
	meta, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	pkg.Metadata = meta
	return pkg, nil
}

// copyPaks copies the package's top-level .pak files into the game's pak
// dir. Existing paks are only replaced when overwrite is set.
func (s *Service) copyPaks(dir string, overwrite bool) (bool, error) {
	paks, err := filepath.Glob(filepath.Join(dir, "*.pak"))
	if err != nil {
		return false, err
	}
	copied := false
	for _, src := range paks {
		name := filepath.Base(src)
		if !overwrite {
			exists, err := s.paks.Exists(name)
			if err != nil {
				return copied, err
			}
			if exists {
				s.logger.Debug("Pak already present", slog.String("file", name))
				continue
			}
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return copied, err
		}
		if err := s.paks.Write(name, data); err != nil {
			return copied, err
		}
		s.logger.Info("Copied file " + name + ".")
		copied = true
	}
	return copied, nil
}

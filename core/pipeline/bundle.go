package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/typecase/fontpack/core"
	"github.com/typecase/fontpack/core/font/container"
	"github.com/typecase/fontpack/core/font/names"
)

// bundle groups the written faces of a report by family and packs one
// collection per family. Families with fewer eligible faces than
// CollectionMin are left alone, as are existing collection files unless
// overwriting is permitted. A pack error skips that family's collection
// but keeps its written faces intact, so bundling never turns a
// successful conversion into a failure.
func bundle(report *Report, opts Options) {
	byFamily := treemap.NewWithStringComparator()
	for _, res := range report.Results {
		if res.State != Written || res.Family == "" {
			continue
		}
		if res.isCFF && !opts.IncludeOTF {
			tracer().Debugf("excluding CFF face %s from collection", res.Output)
			continue
		}
		var faces [][]byte
		if v, ok := byFamily.Get(res.Family); ok {
			faces = v.([][]byte)
		}
		byFamily.Put(res.Family, append(faces, res.data))
	}
	it := byFamily.Iterator()
	for it.Next() {
		family := it.Key().(string)
		faces := it.Value().([][]byte)
		if len(faces) < opts.CollectionMin {
			tracer().Debugf("family %s has %d faces, not bundling", family, len(faces))
			continue
		}
		target := collectionPath(family, opts)
		if !opts.Overwrite {
			if _, err := os.Stat(target); err == nil {
				tracer().Infof("collection %s exists, not overwriting", target)
				continue
			}
		}
		if opts.DryRun {
			report.Collections = append(report.Collections, target)
			continue
		}
		if err := packCollection(target, faces); err != nil {
			tracer().Errorf("collection for %s skipped: %v", family, err)
			continue
		}
		report.Collections = append(report.Collections, target)
	}
}

// Bundle packs the given font files into one named collection. Unlike
// Run it writes no individual faces; the sources are expected to be
// installable fonts already. CFF faces are skipped unless IncludeOTF is
// set. A pack error fails every face that joined the collection, since
// the collection is the only output of this mode.
func Bundle(ctx context.Context, sources []string, name string, opts Options) (*Report, error) {
	if len(sources) == 0 {
		return nil, core.Error(core.EINVALID, "no font sources given")
	}
	if name == "" {
		return nil, core.Error(core.EINVALID, "collection needs a name")
	}
	if opts.OutDir == "" {
		return nil, core.Error(core.EINVALID, "no output directory given")
	}
	report := &Report{}
	target := filepath.Join(opts.OutDir, names.SanitizeFamily(name)+".ttc")
	if !opts.Overwrite {
		if _, err := os.Stat(target); err == nil {
			tracer().Infof("collection %s exists, not overwriting", target)
			for _, src := range sources {
				report.Results = append(report.Results, Result{Source: src, Output: target, State: Skipped})
				report.Skipped++
			}
			return report, nil
		}
	}
	var faces [][]byte
	var joined []int
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, Result{Source: src, State: Skipped, Err: err})
			report.Skipped++
			continue
		}
		res := Result{Source: src, State: Discovered}
		raw, err := os.ReadFile(src)
		if err != nil {
			res = res.fail(core.WrapError(err, core.EMISSING, "cannot read %s", src))
			report.Results = append(report.Results, res)
			report.Failed++
			continue
		}
		face, err := decodeFace(raw)
		if err != nil {
			res = res.fail(err)
			report.Results = append(report.Results, res)
			report.Failed++
			continue
		}
		res.State = Decoded
		res.Family = face.Font.FamilyName
		if face.IsCFF() && !opts.IncludeOTF {
			tracer().Infof("skipping CFF face %s", src)
			res.State = Skipped
			report.Results = append(report.Results, res)
			report.Skipped++
			continue
		}
		res.Output = target
		faces = append(faces, face.Binary)
		joined = append(joined, len(report.Results))
		report.Results = append(report.Results, res)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if len(faces) == 0 {
		return report, core.Error(core.EINVALID, "no faces eligible for collection %s", name)
	}
	if opts.DryRun {
		for _, i := range joined {
			report.Results[i].State = Written
			report.Written++
		}
		report.Collections = append(report.Collections, target)
		return report, nil
	}
	if err := packCollection(target, faces); err != nil {
		for _, i := range joined {
			report.Results[i] = report.Results[i].fail(err)
			report.Failed++
		}
		return report, nil
	}
	for _, i := range joined {
		report.Results[i].State = Written
		report.Written++
	}
	report.Collections = append(report.Collections, target)
	return report, nil
}

func collectionPath(family string, opts Options) string {
	clean := names.SanitizeFamily(family)
	if opts.OrganizeByFamily {
		return filepath.Join(opts.OutDir, clean, clean+".ttc")
	}
	return filepath.Join(opts.OutDir, clean+".ttc")
}

func packCollection(target string, faces [][]byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".fontpack-*")
	if err != nil {
		return err
	}
	_, err = container.Pack(tmp, faces)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

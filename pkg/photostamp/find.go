package photostamp

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Discover returns the albums directly under root and their images, in
// name order. The output directory and hidden entries are skipped, as are
// files whose sniffed content type is not in formats.
func Discover(root string, outDirName string, formats []string) ([]*Album, error) {
	des, err := godirwalk.ReadDirents(root, nil)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}
	sort.Sort(des)

	outRoot := filepath.Join(root, outDirName)
	as := []*Album{}
	for _, de := range des {
		name := de.Name()
		if !de.IsDir() || hidden(name) {
			continue
		}
		if name == outDirName {
			klog.V(1).Infof("skipping output directory %s", name)
			continue
		}

		a := &Album{
			Name:    name,
			InPath:  filepath.Join(root, name),
			OutPath: filepath.Join(outRoot, name),
		}
		a.Images, err = findImages(a, formats)
		if err != nil {
			klog.Errorf("unable to list %s: %v", a.InPath, err)
		}
		klog.Infof("found %d images in %s", len(a.Images), a.InPath)
		as = append(as, a)
	}
	return as, nil
}

func findImages(a *Album, formats []string) ([]*Image, error) {
	des, err := godirwalk.ReadDirents(a.InPath, nil)
	if err != nil {
		return nil, err
	}
	sort.Sort(des)

	is := []*Image{}
	for _, de := range des {
		if !de.IsRegular() || hidden(de.Name()) {
			continue
		}
		path := filepath.Join(a.InPath, de.Name())
		ct, err := sniffFile(path)
		if err != nil {
			klog.Warningf("unable to sniff %s: %v", path, err)
			continue
		}
		if !slices.Contains(formats, ct) {
			klog.V(1).Infof("skipping %s (%s)", path, ct)
			continue
		}
		is = append(is, &Image{InPath: path, ContentType: ct, Album: a})
	}
	return is, nil
}

func hidden(name string) bool {
	return name != "" && name[0] == '.'
}

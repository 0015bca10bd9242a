package data

import (
	"compress/gzip"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type source struct {
	url      string
	filename string
}

// Known datasets, by the identifiers the vignettes use.
var registry = map[string]source{
	"covertype": {
		url:      "https://github.com/jbaker92/sgmcmc-data/raw/master/covertype.csv.gz",
		filename: "covertype.csv",
	},
}

// Fetch downloads the named dataset into dir (the user cache dir when
// dir is empty), decompressing it if needed, and returns the path of the
// extracted file. A previously fetched file is reused without touching
// the network. An unknown name or a failed fetch is fatal; there is no
// retry and no partial file is left behind.
func Fetch(name, dir string) (string, error) {
	src, ok := registry[name]
	if !ok {
		return "", errors.Errorf("unknown dataset %q", name)
	}
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return "", errors.WithStack(err)
		}
		dir = filepath.Join(cache, "sgmcmc")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.WithStack(err)
	}

	dest := filepath.Join(dir, src.filename)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	resp, err := http.Get(src.url)
	if err != nil {
		return "", errors.Wrapf(err, "fetch %q", name)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("fetch %q: %s", name, resp.Status)
	}

	var body io.Reader = resp.Body
	if strings.HasSuffix(src.url, ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", errors.Wrapf(err, "fetch %q", name)
		}
		defer gz.Close()
		body = gz
	}

	tmp, err := os.CreateTemp(dir, src.filename+".*")
	if err != nil {
		return "", errors.WithStack(err)
	}
	if _, err = io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, "fetch %q", name)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.WithStack(err)
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", errors.WithStack(err)
	}
	return dest, nil
}

// Datasets lists the known dataset identifiers.
func Datasets() []string {
	retVal := make([]string, 0, len(registry))
	for name := range registry {
		retVal = append(retVal, name)
	}
	return retVal
}

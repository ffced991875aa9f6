package tda

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/tdasync/date"
)

// diskCache implements a disk cache for transaction queries on closed days.
//
// A query whose endDate is before today can only return records that already
// exist, so its response is kept forever. Other requests go through.
type diskCache struct {
	base  http.RoundTripper
	dir   string
	today func() date.Date
}

// RoundTrip implements the http.RoundTripper interface.
func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	if !c.cacheable(req) {
		return c.base.RoundTrip(req)
	}
	// The key ignores headers: the access token changes, the answer does not.
	key := fmt.Sprintf("%x", sha1.Sum([]byte(req.Method+" "+req.URL.String())))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		log.Printf("%v %v/%v (cached)", req.Method, req.URL.Host, req.URL.Path)
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	// otherwise attempt to store it in cache

	err = c.put(key, resp)
	if err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

// cacheable reports whether req queries days that are all in the past.
func (c *diskCache) cacheable(req *http.Request) bool {
	if req.Method != http.MethodGet {
		return false
	}
	q := req.URL.Query()
	from, err := date.Parse(q.Get("startDate"))
	if err != nil {
		return false
	}
	to, err := date.Parse(q.Get("endDate"))
	if err != nil {
		return false
	}
	return date.Range{From: from, To: to}.Closed(c.today())
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	// DumpResponse restores resp.Body for the caller.
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0600)
}

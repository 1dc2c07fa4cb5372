package httpclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

var (
	ErrApiVersionMismatch  = fmt.Errorf("api version mismatch")
	ErrApiHeaderMismatch   = fmt.Errorf("api header mismatch")
	ErrStatusCodeMismatch  = fmt.Errorf("status code mismatch")
	ErrContentTypeMismatch = fmt.Errorf("content type mismatch")
	ErrRejectedByServer    = fmt.Errorf("rejected by server")
)

func setBearer(req *fasthttp.Request, bearer string) {
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

func readJSONBody(resp *fasthttp.Response, in any) error {
	contentType := resp.Header.Peek("Content-Type")
	if bytes.Index(contentType, []byte("application/json")) != 0 {
		return errors.Join(
			ErrContentTypeMismatch,
			fmt.Errorf("expected content type application/json but got %s", contentType))
	}
	return json.Unmarshal(resp.Body(), in)
}

// MakePost sends out as a JSON body with the bearer token set and decodes the
// JSON response into in.
func MakePost(timeout time.Duration, url, bearer string, out, in any) error {
	return makeWithBody(timeout, "POST", url, bearer, out, in)
}

// MakePut sends out as a JSON body with the bearer token set and decodes the
// JSON response into in.
func MakePut(timeout time.Duration, url, bearer string, out, in any) error {
	return makeWithBody(timeout, "PUT", url, bearer, out, in)
}

func makeWithBody(timeout time.Duration, method, url, bearer string, out, in any) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	setBearer(req, bearer)
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	req.SetBody(raw)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := fasthttp.DoTimeout(req, resp, timeout); err != nil {
		return err
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK, fasthttp.StatusCreated, fasthttp.StatusAccepted:
	case fasthttp.StatusNoContent:
		return nil
	default:
		return errors.Join(
			ErrStatusCodeMismatch,
			fmt.Errorf("expected status code %d but got %d", fasthttp.StatusOK, resp.StatusCode()))
	}

	return readJSONBody(resp, in)
}

// MakeGet requests url with the bearer token set and decodes the JSON
// response into out.
func MakeGet(timeout time.Duration, url, bearer string, out any) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(url)
	req.Header.SetMethod("GET")
	setBearer(req, bearer)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := fasthttp.DoTimeout(req, resp, timeout); err != nil {
		return err
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNoContent:
		return nil
	default:
		return errors.Join(
			ErrStatusCodeMismatch,
			fmt.Errorf("expected status code %d but got %d", fasthttp.StatusOK, resp.StatusCode()))
	}

	return readJSONBody(resp, out)
}

// MakeDelete requests deletion of the resource at url with the bearer token set.
func MakeDelete(timeout time.Duration, url, bearer string) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(url)
	req.Header.SetMethod("DELETE")
	setBearer(req, bearer)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := fasthttp.DoTimeout(req, resp, timeout); err != nil {
		return err
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK, fasthttp.StatusNoContent:
		return nil
	default:
		return errors.Join(
			ErrStatusCodeMismatch,
			fmt.Errorf("expected status code %d but got %d", fasthttp.StatusNoContent, resp.StatusCode()))
	}
}

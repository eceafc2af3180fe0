// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wheel

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.viam.com/test"
)

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestHTTPSelect(t *testing.T) {
	tw := newTestWheel(t, 2)
	h := Handler(tw.Driver)

	w := get(t, h, "/status")
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, w.Body.String(), test.ShouldContainSubstring, "slot 0 (Filter 1) idle")

	w = get(t, h, "/select?slot=2")
	test.That(t, w.Code, test.ShouldEqual, http.StatusAccepted)
	test.That(t, w.Body.String(), test.ShouldContainSubstring, "moving forward to slot 2")

	w = get(t, h, "/select?name=Filter+4")
	test.That(t, w.Code, test.ShouldEqual, http.StatusConflict)

	tw.run(t, 4)
	w = get(t, h, "/select?name=Filter+4")
	test.That(t, w.Code, test.ShouldEqual, http.StatusAccepted)
	test.That(t, tw.Status().Target, test.ShouldEqual, 3)

	test.That(t, get(t, h, "/select?slot=9").Code, test.ShouldEqual, http.StatusBadRequest)
	test.That(t, get(t, h, "/select?slot=x").Code, test.ShouldEqual, http.StatusBadRequest)
	test.That(t, get(t, h, "/select?name=Lum").Code, test.ShouldEqual, http.StatusBadRequest)
}

func TestHTTPImage(t *testing.T) {
	tw := newTestWheel(t, 2)
	w := get(t, Handler(tw.Driver), "/wheel.png")
	test.That(t, w.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, w.Header().Get("Content-Type"), test.ShouldEqual, "image/png")
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, imageSize)
}

func TestHTTPNotReady(t *testing.T) {
	tw := newTestWheel(t, 2)
	test.That(t, tw.Close(), test.ShouldBeNil)
	h := Handler(tw.Driver)
	test.That(t, get(t, h, "/select?slot=1").Code, test.ShouldEqual, http.StatusServiceUnavailable)
	test.That(t, get(t, h, "/status").Body.String(), test.ShouldContainSubstring, "not ready")
}

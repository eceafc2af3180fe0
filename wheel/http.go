// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	   https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// HTTP server for filter wheel status and selection

package wheel

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

const imageSize = 400

// Handler returns a HTTP handler serving:
//
//	/status         text status of the wheel
//	/wheel.png      image of the wheel showing the selected filter
//	/select?slot=N  select a filter by slot
//	/select?name=X  select a filter by name
func Handler(d *Driver) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, statusLine(d))
	})
	mux.HandleFunc("/wheel.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		if err := drawWheel(d).EncodePNG(w); err != nil {
			d.log.Errorf("%s: writing image: %v", d.Name, err)
		}
	})
	mux.HandleFunc("/select", func(w http.ResponseWriter, r *http.Request) {
		var err error
		q := r.URL.Query()
		if name := q.Get("name"); name != "" {
			err = d.SelectByName(name)
		} else {
			slot, perr := strconv.Atoi(q.Get("slot"))
			if perr != nil {
				http.Error(w, fmt.Sprintf("slot: %v", perr), http.StatusBadRequest)
				return
			}
			err = d.SelectFilter(slot)
		}
		switch {
		case err == nil:
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprintln(w, statusLine(d))
		case errors.Is(err, ErrInvalidSlot):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrMotionInProgress):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		}
	})
	return mux
}

// Serve runs the status server on the port.
func Serve(port int, d *Driver) error {
	addr := fmt.Sprintf(":%d", port)
	d.log.Infof("Starting server on %s", addr)
	server := &http.Server{Addr: addr, Handler: Handler(d)}
	return server.ListenAndServe()
}

func statusLine(d *Driver) string {
	st := d.Status()
	names := d.cfg.Names
	s := fmt.Sprintf("%s: slot %d (%s)", d.Name, st.Current, names[st.Current])
	switch {
	case !d.Ready():
		s += " not ready"
	case st.Moving():
		s += fmt.Sprintf(" moving %s to slot %d (%s), %d half-steps remaining", st.Direction, st.Target, names[st.Target], st.Remaining)
	default:
		s += " idle"
	}
	if st.Lost {
		s += ", position unknown"
	}
	return s
}

// drawWheel renders the wheel with the filter at the top being the
// one in the light path. The current slot is drawn at the top.
func drawWheel(d *Driver) *gg.Context {
	st := d.Status()
	names := d.cfg.Names
	c := gg.NewContext(imageSize, imageSize)
	c.SetRGB(1, 1, 1)
	c.Clear()
	mid := float64(imageSize) / 2
	c.SetRGB(0.2, 0.2, 0.2)
	c.DrawCircle(mid, mid, mid-10)
	c.Fill()
	for i := 0; i < Slots; i++ {
		radians := float64(i-st.Current)*2*math.Pi/Slots + math.Pi
		x := (mid-70)*math.Sin(radians) + mid
		y := (mid-70)*math.Cos(radians) + mid
		switch {
		case st.Lost:
			c.SetRGB(0.8, 0.3, 0.3)
		case i == st.Current && !st.Moving():
			c.SetRGB(0.3, 0.8, 0.3)
		case i == st.Target:
			c.SetRGB(0.9, 0.8, 0.2)
		default:
			c.SetRGB(0.6, 0.6, 0.7)
		}
		c.DrawCircle(x, y, 45)
		c.Fill()
		c.SetRGB(0, 0, 0)
		c.DrawStringAnchored(names[i], x, y, 0.5, 0.5)
	}
	// Light path marker.
	c.SetRGB(1, 0, 0)
	c.SetLineWidth(3)
	c.DrawLine(mid, 0, mid, 20)
	c.Stroke()
	return c
}

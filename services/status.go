package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/homewatch/homewatch/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var started = time.Now()

var status = struct {
	sync.Mutex
	values map[string]map[string]interface{}
}{values: map[string]map[string]interface{}{}}

// SetStatus records a value shown under the service on /status.
func SetStatus(service, key string, value interface{}) {
	status.Lock()
	defer status.Unlock()
	if status.values[service] == nil {
		status.values[service] = map[string]interface{}{}
	}
	status.values[service][key] = value
}

// Status returns a copy of the current status values.
func Status() map[string]map[string]interface{} {
	status.Lock()
	defer status.Unlock()
	ret := map[string]map[string]interface{}{}
	for service, values := range status.values {
		ret[service] = map[string]interface{}{}
		for k, v := range values {
			ret[service][k] = v
		}
	}
	return ret
}

func jsonResponse(w http.ResponseWriter, obj interface{}) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func apiIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "homewatch up %s\n", util.ShortDuration(time.Since(started)))
}

func apiStatus(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"uptime":   util.ShortDuration(time.Since(started)),
		"services": Status(),
	})
}

func router() *mux.Router {
	router := mux.NewRouter()
	router.Path("/").HandlerFunc(apiIndex)
	router.Path("/status").Methods("GET").HandlerFunc(apiStatus)
	router.Path("/metrics").Handler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	return router
}

func ServeHTTP(addr string) {
	log.Println("Listening on " + addr)
	err := http.ListenAndServe(addr, router())
	if err != nil {
		log.Fatalln(err)
	}
}

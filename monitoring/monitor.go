// Package monitoring turns a running node into a small HTTP server that
// exposes its identity, traffic, store occupancy, and resource usage.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"

	"github.com/sarchlab/tensorbed/comm"
	"github.com/sarchlab/tensorbed/store"
)

// Monitor serves the state of one node over HTTP for external inspection.
type Monitor struct {
	communicator *comm.Communicator
	store        *store.Store
	portNumber   int
	addr         string
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterCommunicator registers the messaging layer to be monitored.
func (m *Monitor) RegisterCommunicator(c *comm.Communicator) {
	m.communicator = c
}

// RegisterStore registers the tensor store to be monitored.
func (m *Monitor) RegisterStore(s *store.Store) {
	m.store = s
}

// Addr returns the address the server is bound to, once started.
func (m *Monitor) Addr() string {
	return m.addr
}

// StartServer starts the monitor as a web server with a custom port if
// wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/node", m.nodeInfo)
	r.HandleFunc("/api/stats", m.commStats)
	r.HandleFunc("/api/store", m.storeInfo)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.addr = listener.Addr().String()

	fmt.Fprintf(os.Stderr,
		"Monitoring node with http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()
}

type nodeRsp struct {
	Rank     int32 `json:"rank"`
	NumNodes int   `json:"num_nodes"`
}

func (m *Monitor) nodeInfo(w http.ResponseWriter, _ *http.Request) {
	rsp := nodeRsp{
		Rank:     int32(m.communicator.Rank()),
		NumNodes: m.communicator.NumNodes(),
	}

	writeJSON(w, rsp)
}

func (m *Monitor) commStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.communicator.Stats())
}

type storeRsp struct {
	NumTensors int    `json:"num_tensors"`
	UsedBytes  uint64 `json:"used_bytes"`
	Capacity   uint64 `json:"capacity"`
}

func (m *Monitor) storeInfo(w http.ResponseWriter, _ *http.Request) {
	rsp := storeRsp{
		NumTensors: m.store.NumTensors(),
		UsedBytes:  m.store.Used(),
		Capacity:   m.store.Capacity(),
	}

	writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	}

	writeJSON(w, rsp)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}

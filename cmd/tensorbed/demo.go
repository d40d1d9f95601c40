package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tensorbed/cluster"
	"github.com/sarchlab/tensorbed/comm/memtransport"
	"github.com/sarchlab/tensorbed/command"
	"github.com/sarchlab/tensorbed/kernel"
	"github.com/sarchlab/tensorbed/node"
	"github.com/sarchlab/tensorbed/store"
	"github.com/sarchlab/tensorbed/tensor"
	"github.com/sarchlab/tensorbed/trace"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an in-process multi-node reduction.",
	Long: "`demo` spins up a group of nodes over the in-memory transport, " +
		"reduces two dense tensors on the first node, moves the result to " +
		"the last node, and prints it.",
	Run: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Int("nodes", 2, "number of nodes in the group")
	demoCmd.Flags().Int64("elements", 8, "elements per input tensor")
	demoCmd.Flags().Uint64("capacity", 0,
		"per-node store capacity in bytes, zero meaning unbounded")
	demoCmd.Flags().String("trace", "",
		"record events into the named SQLite database")
	demoCmd.Flags().Bool("monitor", false,
		"serve per-node monitoring endpoints on random ports")
}

func runDemo(cmd *cobra.Command, _ []string) {
	numNodes, _ := cmd.Flags().GetInt("nodes")
	elements, _ := cmd.Flags().GetInt64("elements")
	capacity, _ := cmd.Flags().GetUint64("capacity")
	tracePath, _ := cmd.Flags().GetString("trace")
	monitorOn, _ := cmd.Flags().GetBool("monitor")

	if numNodes < 1 {
		log.Fatalf("demo needs at least one node, got %d", numNodes)
	}

	var recorder *trace.Recorder
	if tracePath != "" {
		var err error
		recorder, err = trace.New(tracePath)
		if err != nil {
			log.Fatalf("cannot create trace recorder: %s", err)
		}
	}

	group := memtransport.MakeBuilder().
		WithNumNodes(numNodes).
		Build()

	nodes := make([]*cluster.Node, numNodes)
	for rank := range nodes {
		b := cluster.MakeBuilder().
			WithTransport(group.Bind(node.ID(rank))).
			WithStoreCapacity(capacity)
		if recorder != nil {
			b = b.WithRecorder(recorder)
		}
		if monitorOn {
			b = b.WithMonitor(0)
		}

		nodes[rank] = b.Build()
	}

	startAll(nodes)

	first := nodes[0]
	last := nodes[numNodes-1]

	seedInputs(first, elements)

	kid, err := first.Kernels().IDFor(kernel.WeightedAddName)
	if err != nil {
		log.Fatal(err)
	}

	reduce := command.MakeBuilder().
		WithID(1).
		WithType(command.TypeReduce).
		WithKernelID(kid).
		WithParams(kernel.Params{
			kernel.FloatParam(1.0),
			kernel.FloatParam(2.0),
		}).
		WithInput(1, first.Rank()).
		WithInput(2, first.Rank()).
		WithOutput(3, first.Rank()).
		Build()
	if err := first.Submit(reduce); err != nil {
		log.Fatalf("reduce failed: %s", err)
	}

	if last.Rank() != first.Rank() {
		move := command.MakeBuilder().
			WithID(2).
			WithType(command.TypeMove).
			WithInput(3, first.Rank()).
			WithOutput(3, last.Rank()).
			Build()
		if err := first.Submit(move); err != nil {
			log.Fatalf("move failed: %s", err)
		}

		// The destination announces the copy once it is materialized.
		first.AwaitTensor(3)
	}

	printResult(last, 3)

	del := command.MakeBuilder().
		WithID(3).
		WithType(command.TypeDelete).
		WithInput(1, first.Rank()).
		WithInput(2, first.Rank()).
		Build()
	if err := first.Submit(del); err != nil {
		log.Fatalf("delete failed: %s", err)
	}

	for _, n := range nodes {
		if err := n.Shutdown(); err != nil {
			log.Fatalf("shutdown failed: %s", err)
		}
	}
	group.Terminate()
	for _, n := range nodes {
		n.Wait()
	}

	stats := first.Communicator().Stats()
	fmt.Printf("node %d sent %d dispatches, %d free-channel messages\n",
		first.Rank(), stats.Dispatch.MsgsSent, stats.Free.MsgsSent)

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Fatalf("cannot close trace recorder: %s", err)
		}
	}

	atexit.Exit(0)
}

// startAll launches every node concurrently. Start blocks on a group-wide
// barrier, so the nodes must enter it together.
func startAll(nodes []*cluster.Node) {
	var wg sync.WaitGroup
	errs := make([]error, len(nodes))

	for i, n := range nodes {
		wg.Add(1)
		go func(i int, n *cluster.Node) {
			defer wg.Done()
			errs[i] = n.Start()
		}(i, n)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			log.Fatalf("node %d failed to start: %s", i, err)
		}
	}
}

// seedInputs materializes two dense vectors on the node, holding 1..n and
// its reverse.
func seedInputs(n *cluster.Node, elements int64) {
	meta := tensor.Meta{Dims: []int64{elements}}

	var err error
	meta.Format, err = n.Formats().FormatIDFor(tensor.DenseTypeName)
	if err != nil {
		log.Fatal(err)
	}

	byteSize, err := n.Formats().Size(meta)
	if err != nil {
		log.Fatal(err)
	}

	seed := func(tid tensor.ID, at func(i int) float32) {
		err := n.Store().LocalTransaction(
			nil,
			[]store.CreateSpec{{TID: tid, ByteSize: byteSize}},
			func(res *store.Reservation) error {
				t := res.Create[0].Tensor
				if err := n.Formats().Init(t, meta); err != nil {
					return err
				}

				for i := 0; i < int(elements); i++ {
					t.SetFloat32At(i, at(i))
				}

				return nil
			})
		if err != nil {
			log.Fatalf("cannot seed tensor %d: %s", tid, err)
		}
	}

	seed(1, func(i int) float32 { return float32(i + 1) })
	seed(2, func(i int) float32 { return float32(int(elements) - i) })
}

func printResult(n *cluster.Node, tid tensor.ID) {
	err := n.Store().LocalTransaction(
		[]tensor.ID{tid}, nil,
		func(res *store.Reservation) error {
			t := res.Get[0].Tensor
			numElements := int(t.Meta().NumElements())

			fmt.Printf("node %d tensor %d:", n.Rank(), tid)
			for i := 0; i < numElements; i++ {
				fmt.Printf(" %g", t.Float32At(i))
			}
			fmt.Println()

			return nil
		})
	if err != nil {
		log.Fatalf("cannot read tensor %d: %s", tid, err)
	}
}

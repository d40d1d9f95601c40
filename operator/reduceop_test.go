package operator_test

import (
	"errors"

	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tensorbed/kernel"
	"github.com/sarchlab/tensorbed/operator"
	"github.com/sarchlab/tensorbed/store"
	"github.com/sarchlab/tensorbed/tensor"
)

var _ = Describe("ReduceOp", func() {
	var (
		mockCtrl *gomock.Controller
		formats  *tensor.Registry
		s        *store.Store
		k        *MockKernel
		outTID   tensor.ID
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		formats = tensor.NewRegistry()
		formats.Register(tensor.NewDenseFormat())

		s = store.MakeBuilder().Build()

		k = NewMockKernel(mockCtrl)
		k.EXPECT().OutputTypes().
			Return([]string{tensor.DenseTypeName}).
			AnyTimes()
		k.EXPECT().Name().Return("mock_kernel").AnyTimes()

		outTID = tensor.None
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	seed := func(tid tensor.ID, values ...float32) {
		fid, err := formats.FormatIDFor(tensor.DenseTypeName)
		Expect(err).ToNot(HaveOccurred())

		meta := tensor.Meta{Format: fid, Dims: []int64{int64(len(values))}}

		err = s.LocalTransaction(
			nil,
			[]store.CreateSpec{{TID: tid, ByteSize: uint64(4 * len(values))}},
			func(res *store.Reservation) error {
				t := res.Create[0].Tensor
				if err := formats.Init(t, meta); err != nil {
					return err
				}

				for i, v := range values {
					t.SetFloat32At(i, v)
				}

				return nil
			})
		Expect(err).ToNot(HaveOccurred())
	}

	newOp := func() *operator.ReduceOp {
		op, err := operator.NewReduceOp(formats, s, 1, 2, &outTID, nil, k)
		Expect(err).ToNot(HaveOccurred())

		return op
	}

	It("should materialize the inferred output", func() {
		seed(1, 1, 2)
		seed(2, 10, 20)

		inferred := tensor.Meta{
			Format: tensor.FormatNone,
			Dims:   []int64{2},
		}
		k.EXPECT().
			InferOutputMeta(gomock.Any(), gomock.Len(2)).
			Return([]tensor.Meta{inferred}, nil)
		k.EXPECT().
			Compute(gomock.Any(), gomock.Len(2), gomock.Len(1)).
			DoAndReturn(func(
				_ kernel.Params,
				in, out []*tensor.Tensor,
			) error {
				for i := 0; i < 2; i++ {
					out[0].SetFloat32At(i, in[0].Float32At(i)+in[1].Float32At(i))
				}

				return nil
			})

		Expect(newOp().Apply()).To(Succeed())

		Expect(outTID).To(BeNumerically("<", tensor.None))
		Expect(s.Has(outTID)).To(BeTrue())
		Expect(s.NumTensors()).To(Equal(3))

		err := s.LocalTransaction(
			[]tensor.ID{outTID}, nil,
			func(res *store.Reservation) error {
				Expect(res.Get[0].Tensor.Float32At(0)).To(Equal(float32(11)))
				Expect(res.Get[0].Tensor.Float32At(1)).To(Equal(float32(22)))

				return nil
			})
		Expect(err).ToNot(HaveOccurred())
	})

	It("should reject kernels without output types", func() {
		empty := NewMockKernel(mockCtrl)
		empty.EXPECT().OutputTypes().Return(nil)
		empty.EXPECT().Name().Return("no_output").AnyTimes()

		_, err := operator.NewReduceOp(formats, s, 1, 2, &outTID, nil, empty)
		Expect(err).To(HaveOccurred())
	})

	It("should fail when an input does not exist", func() {
		seed(1, 1)

		Expect(newOp().Apply()).To(MatchError(store.ErrUnknownTensor))
		Expect(outTID).To(Equal(tensor.None))
	})

	It("should propagate inference failures before allocating", func() {
		seed(1, 1)
		seed(2, 2)

		inferErr := errors.New("shapes disagree")
		k.EXPECT().
			InferOutputMeta(gomock.Any(), gomock.Any()).
			Return(nil, inferErr)

		Expect(newOp().Apply()).To(MatchError(inferErr))
		Expect(outTID).To(Equal(tensor.None))
		Expect(s.NumTensors()).To(Equal(2))
	})

	It("should fail cleanly when the output reservation is denied", func() {
		// Room for the two inputs and not one byte more, so the
		// materialize phase cannot reserve its output slot.
		s = store.MakeBuilder().WithCapacity(8).Build()

		seed(1, 1)
		seed(2, 2)

		k.EXPECT().
			InferOutputMeta(gomock.Any(), gomock.Any()).
			Return([]tensor.Meta{{
				Format: tensor.FormatNone,
				Dims:   []int64{1},
			}}, nil)

		Expect(newOp().Apply()).To(MatchError(store.ErrOutOfCapacity))
		Expect(outTID).To(Equal(tensor.None))
		Expect(s.NumTensors()).To(Equal(2))
		Expect(s.Used()).To(Equal(uint64(8)))
	})

	It("should leave no partial output when the kernel fails", func() {
		seed(1, 1)
		seed(2, 2)

		k.EXPECT().
			InferOutputMeta(gomock.Any(), gomock.Any()).
			Return([]tensor.Meta{{
				Format: tensor.FormatNone,
				Dims:   []int64{1},
			}}, nil)

		computeErr := errors.New("device lost")
		k.EXPECT().
			Compute(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(computeErr)

		Expect(newOp().Apply()).To(MatchError(computeErr))
		Expect(outTID).To(Equal(tensor.None))
		Expect(s.NumTensors()).To(Equal(2))
		Expect(s.Used()).To(Equal(uint64(8)))
	})
})

package store_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tensorbed/store"
	"github.com/sarchlab/tensorbed/tensor"
)

var _ = Describe("Store", func() {
	var s *store.Store

	BeforeEach(func() {
		s = store.MakeBuilder().Build()
	})

	createTensor := func(tid tensor.ID, byteSize uint64) {
		err := s.LocalTransaction(
			nil,
			[]store.CreateSpec{{TID: tid, ByteSize: byteSize}},
			func(res *store.Reservation) error {
				return nil
			})
		Expect(err).ToNot(HaveOccurred())
	}

	It("should commit created tensors", func() {
		createTensor(1, 16)

		Expect(s.Has(1)).To(BeTrue())
		Expect(s.NumTensors()).To(Equal(1))
		Expect(s.Used()).To(Equal(uint64(16)))
	})

	It("should expose exactly sized payloads in request order", func() {
		err := s.LocalTransaction(
			nil,
			[]store.CreateSpec{
				{TID: 1, ByteSize: 8},
				{TID: 2, ByteSize: 4},
			},
			func(res *store.Reservation) error {
				Expect(res.Create).To(HaveLen(2))
				Expect(res.Create[0].ID).To(Equal(tensor.ID(1)))
				Expect(res.Create[0].Tensor.ByteSize()).To(Equal(uint64(8)))
				Expect(res.Create[1].ID).To(Equal(tensor.ID(2)))
				Expect(res.Create[1].Tensor.ByteSize()).To(Equal(uint64(4)))

				return nil
			})
		Expect(err).ToNot(HaveOccurred())
	})

	It("should assign anonymous ids below the reserved sentinel", func() {
		var first, second tensor.ID

		err := s.LocalTransaction(
			nil,
			[]store.CreateSpec{
				{TID: tensor.None, ByteSize: 4},
				{TID: tensor.None, ByteSize: 4},
			},
			func(res *store.Reservation) error {
				first = res.Create[0].ID
				second = res.Create[1].ID

				return nil
			})
		Expect(err).ToNot(HaveOccurred())

		Expect(first).To(BeNumerically("<", tensor.None))
		Expect(second).To(BeNumerically("<", first))
		Expect(s.Has(first)).To(BeTrue())
		Expect(s.Has(second)).To(BeTrue())
	})

	It("should deny reads of unknown tensors without running the body", func() {
		ran := false

		err := s.LocalTransaction(
			[]tensor.ID{99}, nil,
			func(res *store.Reservation) error {
				ran = true
				return nil
			})

		Expect(err).To(MatchError(store.ErrUnknownTensor))
		Expect(ran).To(BeFalse())
	})

	It("should deny creates under an existing id", func() {
		createTensor(1, 4)

		err := s.LocalTransaction(
			nil,
			[]store.CreateSpec{{TID: 1, ByteSize: 4}},
			func(res *store.Reservation) error {
				return nil
			})

		Expect(err).To(MatchError(store.ErrTensorExists))
	})

	It("should roll back creates when the body fails", func() {
		bodyErr := errors.New("kernel failed")

		err := s.LocalTransaction(
			nil,
			[]store.CreateSpec{{TID: 1, ByteSize: 16}},
			func(res *store.Reservation) error {
				return bodyErr
			})

		Expect(err).To(MatchError(bodyErr))
		Expect(s.Has(1)).To(BeFalse())
		Expect(s.Used()).To(Equal(uint64(0)))
	})

	It("should allow reading while creating other tensors", func() {
		createTensor(1, 4)

		err := s.LocalTransaction(
			[]tensor.ID{1},
			[]store.CreateSpec{{TID: 2, ByteSize: 4}},
			func(res *store.Reservation) error {
				Expect(res.Get[0].ID).To(Equal(tensor.ID(1)))
				Expect(res.Create[0].ID).To(Equal(tensor.ID(2)))

				return nil
			})
		Expect(err).ToNot(HaveOccurred())
	})

	It("should rename committed tensors", func() {
		createTensor(-2, 8)

		Expect(s.Rename(-2, 5)).To(Succeed())
		Expect(s.Has(-2)).To(BeFalse())
		Expect(s.Has(5)).To(BeTrue())

		Expect(s.Rename(99, 100)).To(MatchError(store.ErrUnknownTensor))
		Expect(s.Rename(5, tensor.None)).To(MatchError(store.ErrUnknownTensor))
	})

	It("should refuse renaming onto an existing tensor", func() {
		createTensor(1, 4)
		createTensor(2, 4)

		Expect(s.Rename(1, 2)).To(MatchError(store.ErrTensorExists))
	})

	It("should delete tensors and free their capacity", func() {
		createTensor(1, 8)

		Expect(s.Delete(1)).To(Succeed())
		Expect(s.Has(1)).To(BeFalse())
		Expect(s.Used()).To(Equal(uint64(0)))

		Expect(s.Delete(1)).To(MatchError(store.ErrUnknownTensor))
	})

	Context("with bounded capacity", func() {
		BeforeEach(func() {
			s = store.MakeBuilder().WithCapacity(16).Build()
		})

		It("should deny reservations beyond capacity", func() {
			createTensor(1, 12)

			err := s.LocalTransaction(
				nil,
				[]store.CreateSpec{{TID: 2, ByteSize: 8}},
				func(res *store.Reservation) error {
					return nil
				})

			Expect(err).To(MatchError(store.ErrOutOfCapacity))
			Expect(s.Capacity()).To(Equal(uint64(16)))
		})

		It("should admit reservations again after a delete", func() {
			createTensor(1, 12)
			Expect(s.Delete(1)).To(Succeed())

			createTensor(2, 16)
			Expect(s.Used()).To(Equal(uint64(16)))
		})
	})

	It("should serialize reads against concurrent creates", func() {
		started := make(chan struct{})
		release := make(chan struct{})
		done := make(chan error, 1)

		go func() {
			done <- s.LocalTransaction(
				nil,
				[]store.CreateSpec{{TID: 1, ByteSize: 4}},
				func(res *store.Reservation) error {
					close(started)
					<-release

					return nil
				})
		}()

		<-started

		readDone := make(chan error, 1)
		go func() {
			readDone <- s.LocalTransaction(
				[]tensor.ID{1}, nil,
				func(res *store.Reservation) error {
					return nil
				})
		}()

		Consistently(readDone).ShouldNot(Receive())

		close(release)
		Expect(<-done).ToNot(HaveOccurred())
		Eventually(readDone).Should(Receive(BeNil()))
	})
})

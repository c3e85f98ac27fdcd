package transform_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/sparkpipe/components"
	"github.com/relloyd/sparkpipe/transform"
)

var _ = Describe("Graph", func() {
	var g *transform.Graph

	noop := func(name string) components.Task {
		return components.NewNoOp(&components.NoOpConfig{Name: name})
	}

	BeforeEach(func() {
		g = transform.NewGraph("test_dag")
		for _, n := range []string{"begin", "left", "right", "join", "end"} {
			Expect(g.AddTask(n, "NoOp", noop(n))).To(Succeed())
		}
	})

	Context("with a diamond", func() {
		BeforeEach(func() {
			Expect(g.AddEdge("begin", "left")).To(Succeed())
			Expect(g.AddEdge("begin", "right")).To(Succeed())
			Expect(g.AddEdge("left", "join")).To(Succeed())
			Expect(g.AddEdge("right", "join")).To(Succeed())
			Expect(g.AddEdge("join", "end")).To(Succeed())
		})

		It("should order every task after its upstream tasks", func() {
			order, err := g.TopologicalOrder()
			Expect(err).ToNot(HaveOccurred())
			Expect(order).To(Equal([]string{"begin", "left", "right", "join", "end"}))
		})

		It("should report direct neighbours", func() {
			Expect(g.Upstream("join")).To(Equal([]string{"left", "right"}))
			Expect(g.Downstream("begin")).To(Equal([]string{"left", "right"}))
			Expect(g.Upstream("begin")).To(BeEmpty())
		})

		It("should validate", func() {
			Expect(g.Validate()).To(Succeed())
		})

		It("should reject a cycle", func() {
			Expect(g.AddEdge("end", "begin")).To(Succeed())
			err := g.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("cycle"))
		})
	})

	It("should reject bad edges and tasks", func() {
		Expect(g.AddEdge("begin", "missing")).ToNot(Succeed())
		Expect(g.AddEdge("begin", "begin")).ToNot(Succeed())
		Expect(g.AddEdge("begin", "end")).To(Succeed())
		Expect(g.AddEdge("begin", "end")).ToNot(Succeed())
		Expect(g.AddTask("begin", "NoOp", noop("begin"))).ToNot(Succeed())
		Expect(g.AddTask("", "NoOp", noop(""))).ToNot(Succeed())
	})

	It("should reject an empty graph", func() {
		Expect(transform.NewGraph("empty").Validate()).ToNot(Succeed())
	})
})

package logger_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/sparkpipe/logger"
)

var _ = Describe("Logger", func() {
	var (
		log       *logger.LoggerImpl
		logOutput *bytes.Buffer
	)

	parse := func() map[string]interface{} {
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())
		return actual
	}

	BeforeEach(func() {
		var err error
		log, err = logger.NewLogger("test-service", "debug", false)
		Expect(err).ToNot(HaveOccurred())
		log.SetJSON()
		logOutput = bytes.NewBufferString("")
		log.SetOutput(logOutput)
	})

	It("should have `test-service` as service name", func() {
		log.Info("Testing")
		Expect(parse()["service"]).To(Equal("test-service"))
	})

	It("should have info as log level", func() {
		log.Info("Testing")
		Expect(parse()["level"]).To(Equal("info"))
	})

	It("should have warning as log level", func() {
		log.Warn("Testing")
		Expect(parse()["level"]).To(Equal("warning"))
	})

	It("should only add a stack trace to errors when asked", func() {
		log.Error("Testing")
		actual := parse()
		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).To(BeNil())

		logOutput.Reset()
		log.PrintStackDump = true
		log.Error("Testing")
		Expect(parse()["stackTrace"]).ToNot(BeNil())
	})

	It("should carry extra fields", func() {
		log.WithField("task", "stage_events").Info("Testing")
		actual := parse()
		Expect(actual["task"]).To(Equal("stage_events"))
		Expect(actual["msg"]).To(Equal("Testing"))
	})

	It("should suppress debug lines at info level", func() {
		l, err := logger.NewLogger("test-service", "info", false)
		Expect(err).ToNot(HaveOccurred())
		l.SetOutput(logOutput)
		l.Debug("hidden")
		Expect(logOutput.Len()).To(Equal(0))
	})

	It("should reject an unknown level", func() {
		_, err := logger.NewLogger("test-service", "loud", false)
		Expect(err).To(HaveOccurred())
	})
})

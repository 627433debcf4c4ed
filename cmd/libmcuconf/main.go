// Command libmcuconf builds the C shared library exposing MCU configuration
// handles:
//
//	go build -buildmode=c-shared -o libmcuconf.so ./cmd/libmcuconf
//
// Every exported function checks its arguments and collapses failures into
// a zero handle, a NULL string or a zero count. Strings returned to C are
// malloc'd copies the caller frees with mcu_conf_free_name.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"os"
	"sync"
	"unsafe"

	"github.com/openfroyo/mcuconf/pkg/handle"
	"github.com/openfroyo/mcuconf/pkg/loader"
	"github.com/openfroyo/mcuconf/pkg/telemetry"
)

// registry is created on first use so that loading the library has no side
// effects. MCUCONF_LOG_LEVEL overrides the library's warn level and
// MCUCONF_METRICS_ADDR serves the load and handle metrics over HTTP.
var registry = sync.OnceValue(func() *handle.Registry {
	cfg := telemetry.LibraryConfig()
	if level := os.Getenv("MCUCONF_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	cfg.Metrics.ListenAddress = os.Getenv("MCUCONF_METRICS_ADDR")

	logger, err := telemetry.NewLogger(cfg.Logging)
	if err != nil {
		logger = telemetry.NewNopLogger()
	}

	metrics, err := telemetry.NewMetrics(cfg.Metrics)
	if err != nil {
		logger.WithError(err).Warn("metrics disabled")
		metrics = telemetry.NewNopMetrics()
	}
	err = metrics.StartMetricsServer(func(err error) {
		logger.WithError(err).Error("metrics server stopped")
	})
	if err != nil {
		logger.WithError(err).Warn("failed to start metrics server")
	}

	return handle.NewRegistry(
		handle.WithLogger(logger),
		handle.WithMetrics(metrics),
		handle.WithLoader(loader.New(
			loader.WithLogger(logger),
			loader.WithMetrics(metrics),
		)),
	)
})

//export mcu_conf_new
func mcu_conf_new(path *C.char) C.uintptr_t {
	if path == nil {
		return 0
	}
	return C.uintptr_t(registry().Create(C.GoString(path)))
}

//export mcu_conf_new_status
func mcu_conf_new_status(path *C.char, status *C.int32_t) C.uintptr_t {
	var (
		h  handle.ConfigHandle
		st = handle.StatusInvalidArgument
	)
	if path != nil {
		h, st = registry().CreateWithStatus(C.GoString(path))
	}
	if status != nil {
		*status = C.int32_t(st)
	}
	return C.uintptr_t(h)
}

//export mcu_conf_free
func mcu_conf_free(h C.uintptr_t) {
	registry().Release(handle.ConfigHandle(h))
}

//export mcu_conf_get_name
func mcu_conf_get_name(h C.uintptr_t) *C.char {
	name, ok := registry().Name(handle.ConfigHandle(h))
	if !ok {
		return nil
	}
	return C.CString(name)
}

//export mcu_conf_free_name
func mcu_conf_free_name(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

//export mcu_conf_get_pins
func mcu_conf_get_pins(h C.uintptr_t) C.uintptr_t {
	return C.uintptr_t(registry().Pins(handle.ConfigHandle(h)))
}

//export pins_get_size
func pins_get_size(t C.uintptr_t) C.uint32_t {
	return C.uint32_t(registry().TableSize(handle.TableHandle(t)))
}

// pins_find_pin returns 1 and writes index when the pin exists, 0 otherwise.
//
//export pins_find_pin
func pins_find_pin(t C.uintptr_t, name *C.char, index *C.uint32_t) C.int32_t {
	if name == nil {
		return 0
	}
	i, ok := registry().TableFind(handle.TableHandle(t), C.GoString(name))
	if !ok {
		return 0
	}
	if index != nil {
		*index = C.uint32_t(i)
	}
	return 1
}

//export pins_get_pin_name
func pins_get_pin_name(t C.uintptr_t, index C.uint32_t) *C.char {
	name, ok := registry().TablePinName(handle.TableHandle(t), uint32(index))
	if !ok {
		return nil
	}
	return C.CString(name)
}

//export mcu_conf_get_package_pins
func mcu_conf_get_package_pins(h C.uintptr_t) C.uint32_t {
	pkg, ok := registry().Package(handle.ConfigHandle(h))
	if !ok {
		return 0
	}
	return C.uint32_t(pkg.Pins())
}

//export package_is_grid
func package_is_grid(h C.uintptr_t) C.int32_t {
	pkg, ok := registry().Package(handle.ConfigHandle(h))
	if !ok || !pkg.IsGrid() {
		return 0
	}
	return 1
}

// mcu_conf_get_package_type returns the package family code: 0 for none or
// unknown, then LQFP, TSSOP, WLCSP, UFQFPN, TFBGA, VFQFPN, EWLCSP, UFBGA and
// LFBGA from 1.
//
//export mcu_conf_get_package_type
func mcu_conf_get_package_type(h C.uintptr_t) C.int32_t {
	return C.int32_t(registry().PackageType(handle.ConfigHandle(h)))
}

func main() {}

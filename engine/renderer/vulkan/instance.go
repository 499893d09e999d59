package vulkan

import (
	"fmt"
	"runtime"
	"slices"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

const (
	engineName               = "VulkanGameEngineExperiment"
	debugReportExtensionName = "VK_EXT_debug_report"
)

// loadVulkan points the loader at the windowing library's vkGetInstanceProcAddr.
func loadVulkan(surface metadata.Surface) error {
	procAddr := surface.GetVulkanProcAddr()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vk: %w", err)
	}
	return nil
}

// requiredInstanceExtensions merges the platform's surface extensions with the ones the backend
// needs, without duplicates and in a stable order.
func requiredInstanceExtensions(platformExtensions []string, goos string, validation bool) []string {
	required := []string{"VK_KHR_surface"} // Generic surface extension
	add := func(names ...string) {
		for _, name := range names {
			if !slices.Contains(required, name) {
				required = append(required, name)
			}
		}
	}
	add(platformExtensions...)
	if goos == "darwin" {
		add("VK_KHR_portability_enumeration", "VK_KHR_get_physical_device_properties2")
	}
	if validation {
		add(debugReportExtensionName)
	}
	return required
}

// validationLayerAvailable reports whether the Khronos validation layer is installed.
func validationLayerAvailable() (bool, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false, vulkanError("vkEnumerateInstanceLayerProperties", res)
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
		return false, vulkanError("vkEnumerateInstanceLayerProperties", res)
	}
	for i := range layers {
		layers[i].Deref()
		name := vk.ToString(layers[i].LayerName[:])
		core.LogDebug("Available Layer: `%s`", name)
		if name == VALIDATION_LAYER_NAME {
			return true, nil
		}
	}
	return false, nil
}

// createInstance creates the instance and, when validation is on and available, the debug report callback.
// It returns whether validation ended up enabled.
func createInstance(context *VulkanContext, config metadata.RendererBackendConfig, surface metadata.Surface) (bool, error) {
	validation := config.Validation
	if validation {
		core.LogInfo("Validation layers enabled. Enumerating...")
		found, err := validationLayerAvailable()
		if err != nil {
			return false, err
		}
		if !found {
			core.LogWarn("Required validation layer is missing: %s. Continuing without validation.", VALIDATION_LAYER_NAME)
			validation = false
		}
	}

	// Setup Vulkan instance.
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(config.ApplicationName),
		PEngineName:        VulkanSafeString(engineName),
	}

	extensions := requiredInstanceExtensions(surface.GetRequiredInstanceExtensions(), runtime.GOOS, validation)
	core.LogInfo("Required extensions: %v", extensions)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
	}
	if runtime.GOOS == "darwin" {
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}
	if validation {
		layers := []string{VALIDATION_LAYER_NAME}
		createInfo.EnabledLayerCount = uint32(len(layers))
		createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)
	}

	if res := vk.CreateInstance(&createInfo, context.Allocator, &context.Instance); res != vk.Success {
		return false, vulkanError("vkCreateInstance", res)
	}
	if err := vk.InitInstance(context.Instance); err != nil {
		return false, err
	}
	core.LogInfo("Vulkan Instance created.")

	if validation {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(context.Instance, &debugCreateInfo, context.Allocator, &dbg)); err != nil {
			return validation, fmt.Errorf("vk.CreateDebugReportCallback failed with %w", err)
		}
		context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}
	return validation, nil
}

// destroyInstance releases the debugger, the surface and the instance. Safe on a partial setup.
func destroyInstance(context *VulkanContext) {
	if context.Instance == nil {
		return
	}
	if context.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}
	if context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(context.Instance, context.debugMessenger, context.Allocator)
		context.debugMessenger = vk.NullDebugReportCallback
	}
	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(context.Instance, context.Allocator)
	context.Instance = nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		core.LogDebug("DEBUG: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"runtime"
	"strings"
	"unsafe"

	"point-shadows/libcfg"
	"point-shadows/libfs"
	"point-shadows/libgl"
	"point-shadows/libscn"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var ViewportWidth, ViewportHeight int

type context = *glfw.Window

type arguments struct {
	ConfigPath                 string
	Root                       string
	Width, Height              int
	DisableShaderCache         bool
	EnableCompatibilityProfile bool
	NoHotReload                bool
}

var Arguments = arguments{
	ConfigPath: "assets/scene.toml",
}

func main() {
	flag.StringVar(&Arguments.ConfigPath, "config", Arguments.ConfigPath, "scene configuration file")
	flag.StringVar(&Arguments.Root, "root", Arguments.Root, "asset root, overrides LOGL_ROOT_PATH")
	flag.IntVar(&Arguments.Width, "width", Arguments.Width, "window width, overrides the config")
	flag.IntVar(&Arguments.Height, "height", Arguments.Height, "window height, overrides the config")
	flag.BoolVar(&Arguments.DisableShaderCache, "disable-shader-cache", Arguments.DisableShaderCache, "")
	flag.BoolVar(&Arguments.EnableCompatibilityProfile, "enable-compatibility-profile", Arguments.EnableCompatibilityProfile, "")
	flag.BoolVar(&Arguments.NoHotReload, "no-hot-reload", Arguments.NoHotReload, "do not watch shader files")
	flag.Parse()

	cfg, err := loadConfig(Arguments)
	check(err)
	if cfg.Assets.Root != "" {
		libfs.SetDefaultRoot(cfg.Assets.Root)
	}
	if Arguments.Root != "" {
		libfs.SetRoot(Arguments.Root)
	}

	ctx, err := initGLFW(cfg.Window)
	check(err)
	defer glfw.Terminate()
	check(initGL(ctx))

	ctx.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	libgl.Env = libgl.NewEnvironment()
	libgl.State = libgl.NewStateManager()
	libgl.ShaderCache.Disabled = Arguments.DisableShaderCache
	log.Printf("Using %v (%v)\n", libgl.Env.Renderer, libgl.Env.Version)

	ctx.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		ViewportWidth, ViewportHeight = width, height
	})
	Input = NewInputManager(ctx)

	pack := &libscn.DirPack{}
	check(pack.AddIndexFile(cfg.Assets.Index))

	scene, err := NewScene(cfg, pack)
	check(err)
	defer scene.Release()

	imguiShader, err := pack.LoadShader("imgui")
	check(err)
	Gui = NewImGui(ctx, imguiShader)
	defer Gui.Delete()
	scene.Track(imguiShader)

	if !Arguments.NoHotReload {
		watcher, err := watchShaders(pack, scene.lit, scene.depth, imguiShader)
		check(err)
		defer watcher.Close()
		scene.watcher = watcher
	}

	ctx.Show()
	for !ctx.ShouldClose() {
		glfw.PollEvents()
		Input.Update(ctx)
		scene.ProcessInput(ctx)
		scene.Reload()
		scene.Draw()
		DrawUi(scene)
		Gui.Draw()
		ctx.SwapBuffers()
	}
}

// loadConfig reads the scene file. A missing default file falls back to the built-in defaults.
func loadConfig(args arguments) (*libcfg.Scene, error) {
	cfg, err := libcfg.Load(args.ConfigPath)
	if errors.Is(err, fs.ErrNotExist) && !isFlagSet("config") {
		log.Printf("No scene configuration at %q, using defaults\n", args.ConfigPath)
		cfg, err = libcfg.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if args.Width > 0 {
		cfg.Window.Width = args.Width
	}
	if args.Height > 0 {
		cfg.Window.Height = args.Height
	}
	return cfg, cfg.Validate()
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func watchShaders(pack *libscn.DirPack, shaders ...*libgl.Shader) (*libscn.Watcher, error) {
	watcher, err := libscn.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, sh := range shaders {
		files, err := pack.ShaderFiles(sh.Name())
		if err != nil {
			watcher.Close()
			return nil, err
		}
		if err = watcher.Watch(sh.Name(), files...); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

func check(err error) {
	if err != nil {
		log.Panic(err)
	}
}

func initGLFW(window libcfg.Window) (context, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, err
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 5)
	if Arguments.EnableCompatibilityProfile {
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCompatProfile)
	} else {
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	}
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.False)

	ctx, err := glfw.CreateWindow(window.Width, window.Height, window.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	ctx.MakeContextCurrent()
	glfw.SwapInterval(1)

	return ctx, nil
}

func initGL(ctx context) error {
	init := gl.InitWithProcAddrFunc
	vendorSuffixes := []string{"3DFX", "PGI", "SGIX", "SGIS", "SGI", "IBM", "HP", "NV", "NVX", "INGR", "ARB", "EXT", "AMD", "ATI", "MESA", "KHR", "INTEL", "GREMEDY", "APPLE", "OES", "SUN", "SUNX"}
	err := init(func(name string) unsafe.Pointer {
		addr := glfw.GetProcAddress(name)
		if addr == nil {
			vendorSuffix := false
			for _, suffix := range vendorSuffixes {
				if strings.HasSuffix(name, suffix) {
					vendorSuffix = true
				}
			}
			if !vendorSuffix {
				log.Printf("Proc missing: %v\n", name)
			}
			return unsafe.Pointer(uintptr(0xffff_ffff_ffff_ffff))
		}
		return addr
	})
	if err != nil {
		return err
	}
	gl.Enable(gl.DEBUG_OUTPUT)
	gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
	groupStack := []string{"top"}
	gl.DebugMessageCallback(
		func(source, gltype, id, severity uint32, length int32, message string, userParam unsafe.Pointer) {
			if gltype == gl.DEBUG_TYPE_PUSH_GROUP {
				groupStack = append(groupStack, message)
				return
			} else if gltype == gl.DEBUG_TYPE_POP_GROUP {
				groupStack = groupStack[:len(groupStack)-1]
				return
			}
			msg := formatDebugMessage(source, gltype, id, severity, message)
			if severity == gl.DEBUG_SEVERITY_HIGH {
				log.Panicf("%v\ndebug stack: %v", msg, strings.Join(groupStack, " > "))
			}
			log.Println(msg)
		}, nil)
	disabledMessages := []uint32{131185}
	gl.DebugMessageControl(gl.DEBUG_SOURCE_API, gl.DEBUG_TYPE_OTHER, gl.DONT_CARE, int32(len(disabledMessages)), &disabledMessages[0], false)
	disabledMessages = []uint32{131222}
	gl.DebugMessageControl(gl.DEBUG_SOURCE_API, gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR, gl.DONT_CARE, int32(len(disabledMessages)), &disabledMessages[0], false)

	ViewportWidth, ViewportHeight = ctx.GetFramebufferSize()

	return nil
}

var debugSeverityNames = map[uint32]string{
	gl.DEBUG_SEVERITY_HIGH:         "CRITICAL_ERROR",
	gl.DEBUG_SEVERITY_MEDIUM:       "ERROR",
	gl.DEBUG_SEVERITY_LOW:          "WARNING",
	gl.DEBUG_SEVERITY_NOTIFICATION: "INFO",
}

var debugTypeNames = map[uint32]string{
	gl.DEBUG_TYPE_ERROR:               "ERROR",
	gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR: "DEPRECATED_BEHAVIOR",
	gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:  "UNDEFINED_BEHAVIOR",
	gl.DEBUG_TYPE_PERFORMANCE:         "PERFORMANCE",
	gl.DEBUG_TYPE_PORTABILITY:         "PORTABILITY",
	gl.DEBUG_TYPE_OTHER:               "OTHER",
	gl.DEBUG_TYPE_MARKER:              "MARKER",
	gl.DEBUG_TYPE_PUSH_GROUP:          "PUSH_GROUP",
	gl.DEBUG_TYPE_POP_GROUP:           "POP_GROUP",
}

var debugSourceNames = map[uint32]string{
	gl.DEBUG_SOURCE_API:             "GRAPHICS_LIBRARY",
	gl.DEBUG_SOURCE_SHADER_COMPILER: "SHADER_COMPILER",
	gl.DEBUG_SOURCE_WINDOW_SYSTEM:   "WINDOW_SYSTEM",
	gl.DEBUG_SOURCE_THIRD_PARTY:     "THIRD_PARTY",
	gl.DEBUG_SOURCE_APPLICATION:     "APPLICATION",
	gl.DEBUG_SOURCE_OTHER:           "OTHER",
}

func formatDebugMessage(source, gltype, id, severity uint32, message string) string {
	return fmt.Sprintf("[%v] %v #%v from %v: %v", debugSeverityNames[severity], debugTypeNames[gltype], id, debugSourceNames[source], message)
}

package libgl

import (
	"fmt"
	"log"
	"reflect"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	VertexStage   uint32 = gl.VERTEX_SHADER
	GeometryStage uint32 = gl.GEOMETRY_SHADER
	FragmentStage uint32 = gl.FRAGMENT_SHADER
)

const infoLogSize = 1024

// Shader is a program linked from a vertex, an optional geometry and a fragment stage.
type Shader struct {
	name             string
	glId             uint32
	stages           []*ShaderSource
	defines          map[string]string
	overrides        map[string]string
	uniformLocations map[string]int32
}

// NewShader does not compile anything yet, call Compile or CompileWith.
func NewShader(name string, stages ...*ShaderSource) *Shader {
	var filtered []*ShaderSource
	for _, s := range stages {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &Shader{
		name:             name,
		stages:           filtered,
		defines:          map[string]string{},
		overrides:        map[string]string{},
		uniformLocations: map[string]int32{},
	}
}

func (sh *Shader) Id() uint32 {
	return sh.glId
}

func (sh *Shader) Name() string {
	return sh.name
}

func (sh *Shader) SetDebugLabel(label string) {
	setObjectLabel(gl.PROGRAM, sh.glId, label)
}

// Defines returns the default define values of all stages merged with the pipeline defines and overrides.
func (sh *Shader) Defines() map[string]string {
	defs := map[string]string{}
	for _, s := range sh.stages {
		for k, v := range s.Defines() {
			defs[k] = v
		}
	}
	for k, v := range MergeDefines(sh.defines, sh.overrides) {
		defs[k] = v
	}
	return defs
}

// Overrides returns a copy of the values set with SetOverrides.
func (sh *Shader) Overrides() map[string]string {
	return MergeDefines(nil, sh.overrides)
}

// SetOverrides replaces the runtime overrides. They apply from the next compilation on
// and survive Replace, unlike the pipeline defines.
func (sh *Shader) SetOverrides(overrides map[string]string) {
	sh.overrides = MergeDefines(nil, overrides)
}

// MergeDefines copies base and puts overrides on top of it.
func MergeDefines(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Expand returns the compilable source of every stage.
func (sh *Shader) Expand() []string {
	defs := MergeDefines(sh.defines, sh.overrides)
	sources := make([]string, len(sh.stages))
	for i, s := range sh.stages {
		sources[i] = s.Expand(defs)
	}
	return sources
}

func (sh *Shader) Compile() error {
	return sh.CompileWith(sh.defines)
}

// Replace swaps the stage sources and pipeline defines, then recompiles with the active overrides.
// The previous program stays in use if compilation fails.
func (sh *Shader) Replace(defs map[string]string, stages ...*ShaderSource) error {
	prevStages, prevDefines := sh.stages, sh.defines
	sh.stages = nil
	for _, s := range stages {
		if s != nil {
			sh.stages = append(sh.stages, s)
		}
	}
	if err := sh.CompileWith(defs); err != nil {
		sh.stages, sh.defines = prevStages, prevDefines
		return err
	}
	return nil
}

// CompileWith links a new program from the stage sources with the given pipeline defines.
// Overrides take precedence over them. On failure the previous program, if any, stays alive.
func (sh *Shader) CompileWith(defs map[string]string) error {
	if len(sh.stages) == 0 {
		return fmt.Errorf("%v shader has no stages", sh.name)
	}

	prevDefines := sh.defines
	sh.defines = MergeDefines(nil, defs)
	sources := sh.Expand()

	key := CacheKey(sources, Env.Vendor, Env.Renderer, Env.Version)
	id, cached := loadCachedProgram(key)
	if !cached {
		var err error
		id, err = sh.link(sources)
		if err != nil {
			sh.defines = prevDefines
			return err
		}
	}

	gl.ValidateProgram(id)
	var ok int32
	gl.GetProgramiv(id, gl.VALIDATE_STATUS, &ok)
	if ok == gl.FALSE {
		log.Printf("%v shader did not validate: %v\n", sh.name, readProgramInfoLog(id))
	}

	if !cached {
		ShaderCache.Put(key, id)
	}

	if sh.glId != 0 {
		if State.Program == sh.glId {
			State.UseProgram(0)
		}
		gl.DeleteProgram(sh.glId)
	}
	sh.glId = id
	sh.uniformLocations = map[string]int32{}
	sh.SetDebugLabel(sh.name)
	return nil
}

func loadCachedProgram(key string) (uint32, bool) {
	buf, format, ok := ShaderCache.Get(key)
	if !ok {
		return 0, false
	}
	id := gl.CreateProgram()
	gl.ProgramBinary(id, format, Pointer(buf), int32(len(buf)))
	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		// stale binary, the driver rejected it
		gl.DeleteProgram(id)
		return 0, false
	}
	return id, true
}

func (sh *Shader) link(sources []string) (uint32, error) {
	id := gl.CreateProgram()
	gl.ProgramParameteri(id, gl.PROGRAM_BINARY_RETRIEVABLE_HINT, gl.TRUE)

	shaders := make([]uint32, 0, len(sources))
	defer func() {
		for _, s := range shaders {
			gl.DeleteShader(s)
		}
	}()

	for i, src := range sources {
		stage := sh.stages[i].Stage
		shader := gl.CreateShader(stage)
		shaders = append(shaders, shader)
		cStrs, free := gl.Strs(src + "\x00")
		gl.ShaderSource(shader, 1, cStrs, nil)
		free()
		gl.CompileShader(shader)

		var status int32
		gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
		if status == gl.FALSE {
			info := readShaderInfoLog(shader)
			log.Printf("ERROR::SHADER_COMPILATION_ERROR of type: %s\n%s\n", StageName(stage), info)
			gl.DeleteProgram(id)
			return 0, fmt.Errorf("could not compile %s stage of %v shader: %s", StageName(stage), sh.name, info)
		}
		gl.AttachShader(id, shader)
	}

	gl.LinkProgram(id)
	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		info := readProgramInfoLog(id)
		log.Printf("ERROR::PROGRAM_LINKING_ERROR of type: PROGRAM\n%s\n", info)
		gl.DeleteProgram(id)
		return 0, fmt.Errorf("could not link %v shader: %s", sh.name, info)
	}
	for _, s := range shaders {
		gl.DetachShader(id, s)
	}
	return id, nil
}

func readShaderInfoLog(id uint32) string {
	buf := make([]byte, infoLogSize)
	var length int32
	gl.GetShaderInfoLog(id, infoLogSize, &length, &buf[0])
	return string(buf[:length])
}

func readProgramInfoLog(id uint32) string {
	buf := make([]byte, infoLogSize)
	var length int32
	gl.GetProgramInfoLog(id, infoLogSize, &length, &buf[0])
	return string(buf[:length])
}

func (sh *Shader) Use() {
	State.UseProgram(sh.glId)
}

func (sh *Shader) Delete() {
	if State.Program == sh.glId {
		State.UseProgram(0)
	}
	gl.DeleteProgram(sh.glId)
	sh.glId = 0
}

func (sh *Shader) GetUniformLocation(name string) int32 {
	if location, ok := sh.uniformLocations[name]; ok {
		return location
	}

	location := gl.GetUniformLocation(sh.glId, gl.Str(name+"\x00"))
	sh.uniformLocations[name] = location

	if location == -1 {
		log.Printf("%v shader: could not get location of %q\n", sh.name, name)
	}

	return location
}

func (sh *Shader) SetBool(name string, value bool) {
	v := int32(0)
	if value {
		v = 1
	}
	if loc := sh.GetUniformLocation(name); loc != -1 {
		gl.ProgramUniform1i(sh.glId, loc, v)
	}
}

func (sh *Shader) SetInt(name string, value int) {
	if loc := sh.GetUniformLocation(name); loc != -1 {
		gl.ProgramUniform1i(sh.glId, loc, int32(value))
	}
}

func (sh *Shader) SetFloat(name string, value float32) {
	if loc := sh.GetUniformLocation(name); loc != -1 {
		gl.ProgramUniform1f(sh.glId, loc, value)
	}
}

func (sh *Shader) SetVec2(name string, value mgl32.Vec2) {
	if loc := sh.GetUniformLocation(name); loc != -1 {
		gl.ProgramUniform2fv(sh.glId, loc, 1, &value[0])
	}
}

func (sh *Shader) SetVec3(name string, value mgl32.Vec3) {
	if loc := sh.GetUniformLocation(name); loc != -1 {
		gl.ProgramUniform3fv(sh.glId, loc, 1, &value[0])
	}
}

func (sh *Shader) SetVec4(name string, value mgl32.Vec4) {
	if loc := sh.GetUniformLocation(name); loc != -1 {
		gl.ProgramUniform4fv(sh.glId, loc, 1, &value[0])
	}
}

func (sh *Shader) SetMat2(name string, value mgl32.Mat2) {
	if loc := sh.GetUniformLocation(name); loc != -1 {
		gl.ProgramUniformMatrix2fv(sh.glId, loc, 1, false, &value[0])
	}
}

func (sh *Shader) SetMat3(name string, value mgl32.Mat3) {
	if loc := sh.GetUniformLocation(name); loc != -1 {
		gl.ProgramUniformMatrix3fv(sh.glId, loc, 1, false, &value[0])
	}
}

func (sh *Shader) SetMat4(name string, value mgl32.Mat4) {
	if loc := sh.GetUniformLocation(name); loc != -1 {
		gl.ProgramUniformMatrix4fv(sh.glId, loc, 1, false, &value[0])
	}
}

func (sh *Shader) SetUniform(name string, value any) {
	location := sh.GetUniformLocation(name)
	if location == -1 {
		return
	}
	setProgramUniformAny(sh.glId, location, value)
}

// SetUniformIndexed sets element index of a uniform array.
// The location is looked up by the element name, arrays of non-basic types do not have contiguous locations.
func (sh *Shader) SetUniformIndexed(name string, index int, value any) {
	sh.SetUniform(fmt.Sprintf("%s[%d]", name, index), value)
}

func setProgramUniformAny(prog uint32, location int32, value any) {
	for refVal := reflect.ValueOf(value); refVal.Kind() == reflect.Ptr; refVal = reflect.ValueOf(value) {
		value = refVal.Elem().Interface()
	}

	switch v := value.(type) {
	case bool:
		if v {
			gl.ProgramUniform1i(prog, location, 1)
		} else {
			gl.ProgramUniform1i(prog, location, 0)
		}
	case float64:
		gl.ProgramUniform1d(prog, location, v)
	case float32:
		gl.ProgramUniform1f(prog, location, v)
	case int:
		gl.ProgramUniform1i(prog, location, int32(v))
	case int32:
		gl.ProgramUniform1i(prog, location, v)
	case uint:
		gl.ProgramUniform1ui(prog, location, uint32(v))
	case uint32:
		gl.ProgramUniform1ui(prog, location, v)
	case mgl32.Vec2:
		gl.ProgramUniform2f(prog, location, v.X(), v.Y())
	case mgl64.Vec2:
		gl.ProgramUniform2d(prog, location, v.X(), v.Y())
	case mgl32.Vec3:
		gl.ProgramUniform3f(prog, location, v.X(), v.Y(), v.Z())
	case mgl64.Vec3:
		gl.ProgramUniform3d(prog, location, v.X(), v.Y(), v.Z())
	case mgl32.Vec4:
		gl.ProgramUniform4f(prog, location, v.X(), v.Y(), v.Z(), v.W())
	case mgl64.Vec4:
		gl.ProgramUniform4d(prog, location, v.X(), v.Y(), v.Z(), v.W())
	case mgl32.Mat2:
		gl.ProgramUniformMatrix2fv(prog, location, 1, false, &v[0])
	case mgl32.Mat3:
		gl.ProgramUniformMatrix3fv(prog, location, 1, false, &v[0])
	case mgl64.Mat3:
		gl.ProgramUniformMatrix3dv(prog, location, 1, false, &v[0])
	case mgl32.Mat4:
		gl.ProgramUniformMatrix4fv(prog, location, 1, false, &v[0])
	case mgl64.Mat4:
		gl.ProgramUniformMatrix4dv(prog, location, 1, false, &v[0])
	default:
		log.Panicf("Unsupported uniform type %T", value)
	}
}

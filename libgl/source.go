package libgl

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var shaderMetaPattern = regexp.MustCompile(`(?m)^//meta:(\w+)(.+)$`)
var shaderDefinePattern = regexp.MustCompile(`(?m)^[ \t]*(//)?[ \t]*#define (\w+) ?(.*)$`)
var shaderVersionPattern = regexp.MustCompile(`(?m)^[ \t]*#version.+$`)

type glslDef struct {
	marker    string
	name      string
	value     string
	boolean   bool
	commented bool
}

// ShaderSource is a single GLSL stage whose #define lines can be rewritten before compilation.
// A commented out `// #define NAME` is a boolean switch that is currently off.
// A commented out define with a value stays commented until it is overridden.
type ShaderSource struct {
	Name        string
	Stage       uint32
	definitions []glslDef
	template    string
	versionEnd  int
}

func ParseShaderSource(source string, stage uint32) *ShaderSource {
	name := "untitled"
	for _, match := range shaderMetaPattern.FindAllStringSubmatch(source, -1) {
		key, value := match[1], strings.TrimSpace(match[2])
		if strings.EqualFold(key, "name") {
			name = value
		}
	}

	var definitions []glslDef
	var template strings.Builder
	last := 0
	for i, loc := range shaderDefinePattern.FindAllStringSubmatchIndex(source, -1) {
		commented := loc[2] != -1
		defName := source[loc[4]:loc[5]]
		value := strings.TrimSpace(source[loc[6]:loc[7]])
		boolean := value == ""
		if boolean && commented {
			value = "false"
		}
		marker := fmt.Sprintf("$def_%d$", i)
		definitions = append(definitions, glslDef{
			marker:    marker,
			name:      defName,
			value:     value,
			boolean:   boolean,
			commented: commented,
		})
		template.WriteString(source[last:loc[0]])
		template.WriteString(marker)
		last = loc[1]
	}
	template.WriteString(source[last:])

	src := &ShaderSource{
		Name:        name,
		Stage:       stage,
		definitions: definitions,
		template:    template.String(),
	}
	if loc := shaderVersionPattern.FindStringIndex(src.template); loc != nil {
		src.versionEnd = loc[1]
	}
	return src
}

// Defines returns the default value of every active #define and boolean switch in the source.
func (src *ShaderSource) Defines() map[string]string {
	defs := make(map[string]string, len(src.definitions))
	for _, def := range src.definitions {
		if def.commented && !def.boolean {
			continue
		}
		defs[def.name] = def.value
	}
	return defs
}

// Expand produces compilable source. Known names are matched case-insensitively and
// overridden in place, unknown names are inserted right after the #version line.
func (src *ShaderSource) Expand(defs map[string]string) string {
	source := src.template

	known := map[string]bool{}
	for _, def := range src.definitions {
		known[strings.ToLower(def.name)] = true
	}

	var extra []string
	values := map[string]string{}
	for n, v := range defs {
		k := strings.ToLower(n)
		if known[k] {
			values[k] = v
		} else {
			extra = append(extra, fmt.Sprintf("#define %v %v", n, v))
		}
	}

	for _, def := range src.definitions {
		value, overridden := values[strings.ToLower(def.name)]
		if !overridden {
			value = def.value
		}
		source = strings.Replace(source, def.marker, formatDefine(def, value, overridden), 1)
	}

	if len(extra) == 0 {
		return source
	}
	sort.Strings(extra)
	insert := strings.Join(extra, "\n")
	if src.versionEnd == 0 {
		return insert + "\n" + source
	}
	return source[:src.versionEnd] + "\n" + insert + source[src.versionEnd:]
}

func formatDefine(def glslDef, value string, overridden bool) string {
	if !def.boolean {
		if def.commented && !overridden {
			return fmt.Sprintf("// #define %v %v", def.name, value)
		}
		return fmt.Sprintf("#define %v %v", def.name, value)
	}
	if value == "false" {
		return fmt.Sprintf("// #define %v", def.name)
	}
	return fmt.Sprintf("#define %v", def.name)
}

func StageName(stage uint32) string {
	switch stage {
	case VertexStage:
		return "VERTEX"
	case GeometryStage:
		return "GEOMETRY"
	case FragmentStage:
		return "FRAGMENT"
	}
	return fmt.Sprintf("0x%04x", stage)
}

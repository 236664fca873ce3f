package libscn

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"point-shadows/libgl"
)

type AssetIndex struct {
	Textures []string `json:"textures"`
	Models   []string `json:"models"`
	Shaders  []string `json:"shaders"`
}

// ShaderPipelineDesc names the stages of a program relative to the descriptor file.
// Geometry is optional.
type ShaderPipelineDesc struct {
	Vertex   string            `json:"vertex"`
	Geometry string            `json:"geometry,omitempty"`
	Fragment string            `json:"fragment"`
	Defines  map[string]string `json:"defines,omitempty"`
}

type DirPack struct {
	TextureIndex map[string]string
	ModelIndex   map[string]string
	ShaderIndex  map[string]string
	init         bool
}

func (pack *DirPack) AddIndexFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("could not add index file %q: %w", name, err)
	}
	defer file.Close()

	return pack.AddIndex(file, path.Dir(filepath.ToSlash(name)))
}

func (pack *DirPack) AddIndex(r io.Reader, root string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	index := AssetIndex{}
	err = json.Unmarshal(data, &index)
	if err != nil {
		return fmt.Errorf("could not unmarshal asset index: %w", err)
	}

	if !pack.init {
		pack.TextureIndex = map[string]string{}
		pack.ModelIndex = map[string]string{}
		pack.ShaderIndex = map[string]string{}
		pack.init = true
	}

	root = path.Clean(root)
	err = pack.addAllMatches(root, index.Textures, pack.TextureIndex)
	if err != nil {
		return err
	}
	err = pack.addAllMatches(root, index.Models, pack.ModelIndex)
	if err != nil {
		return err
	}
	err = pack.addAllMatches(root, index.Shaders, pack.ShaderIndex)
	if err != nil {
		return err
	}

	return nil
}

func (pack *DirPack) addAllMatches(root string, patterns []string, index map[string]string) error {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(path.Join(root, pattern))
		if err != nil {
			return fmt.Errorf("invalid asset pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			match = filepath.ToSlash(match)

			name, _, _ := strings.Cut(path.Base(match), ".")
			index[name] = match
		}
	}
	return nil
}

func (pack *DirPack) LoadShaderPipelineDesc(name string) (*ShaderPipelineDesc, string, error) {
	filename, ok := pack.ShaderIndex[name]
	if !ok {
		return nil, "", fmt.Errorf("shader pipeline %q is not registered in this pack", name)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, "", fmt.Errorf("could not read shader pipeline file %q: %w", filename, err)
	}

	desc := &ShaderPipelineDesc{}
	err = json.Unmarshal(data, desc)
	if err != nil {
		return nil, "", fmt.Errorf("could not unmarshal shader pipeline file %q: %w", filename, err)
	}
	if desc.Vertex == "" || desc.Fragment == "" {
		return nil, "", fmt.Errorf("shader pipeline file %q needs a vertex and a fragment stage", filename)
	}

	return desc, filename, nil
}

// ShaderFiles lists the descriptor and every stage file of a pipeline.
func (pack *DirPack) ShaderFiles(name string) ([]string, error) {
	desc, filename, err := pack.LoadShaderPipelineDesc(name)
	if err != nil {
		return nil, err
	}
	root := path.Dir(filename)
	files := []string{filename, path.Join(root, desc.Vertex)}
	if desc.Geometry != "" {
		files = append(files, path.Join(root, desc.Geometry))
	}
	return append(files, path.Join(root, desc.Fragment)), nil
}

// LoadShaderSources parses the stages of a pipeline without touching GL.
func (pack *DirPack) LoadShaderSources(name string) (*ShaderPipelineDesc, []*libgl.ShaderSource, error) {
	desc, filename, err := pack.LoadShaderPipelineDesc(name)
	if err != nil {
		return nil, nil, err
	}

	root := path.Dir(filename)
	stages := []struct {
		file  string
		stage uint32
	}{
		{desc.Vertex, libgl.VertexStage},
		{desc.Geometry, libgl.GeometryStage},
		{desc.Fragment, libgl.FragmentStage},
	}

	var sources []*libgl.ShaderSource
	for _, s := range stages {
		if s.file == "" {
			continue
		}
		src, err := pack.LoadShaderSource(path.Join(root, s.file), s.stage)
		if err != nil {
			return nil, nil, fmt.Errorf("could not load %s shader %q for shader pipeline %q: %w", strings.ToLower(libgl.StageName(s.stage)), s.file, filename, err)
		}
		sources = append(sources, src)
	}

	return desc, sources, nil
}

func (pack *DirPack) LoadShaderSource(filename string, stage uint32) (*libgl.ShaderSource, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read shader file %q: %w", filename, err)
	}
	return libgl.ParseShaderSource(string(src), stage), nil
}

// LoadShader compiles a pipeline with the defines of its descriptor.
func (pack *DirPack) LoadShader(name string) (*libgl.Shader, error) {
	desc, sources, err := pack.LoadShaderSources(name)
	if err != nil {
		return nil, err
	}

	shader := libgl.NewShader(name, sources...)
	if err = shader.CompileWith(desc.Defines); err != nil {
		return nil, fmt.Errorf("could not compile shader pipeline %q: %w", name, err)
	}
	return shader, nil
}

// ReloadShader recompiles an existing shader from disk and keeps the old program on failure.
// The descriptor defines are read again, overrides set on the shader stay on top of them.
func (pack *DirPack) ReloadShader(shader *libgl.Shader) error {
	desc, sources, err := pack.LoadShaderSources(shader.Name())
	if err != nil {
		return err
	}
	return shader.Replace(desc.Defines, sources...)
}

func (pack *DirPack) LoadTexture(name string) (libgl.UnboundTexture, error) {
	filename, ok := pack.TextureIndex[name]
	if !ok {
		return nil, fmt.Errorf("texture %q is not registered in this pack", name)
	}
	return LoadTexture(filename)
}

func (pack *DirPack) LoadModel(name string, gamma bool) (*Model, error) {
	filename, ok := pack.ModelIndex[name]
	if !ok {
		return nil, fmt.Errorf("model %q is not registered in this pack", name)
	}
	return LoadModel(filename, gamma)
}

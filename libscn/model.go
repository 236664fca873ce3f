package libscn

import (
	"fmt"
	"log"
	"path"

	"point-shadows/libgl"
	"point-shadows/libutil"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Model is a glTF scene flattened into meshes. Node transforms are baked into the vertices.
type Model struct {
	Meshes         []*Mesh
	directory      string
	gamma          bool
	texturesLoaded map[string]MeshTexture
}

func LoadModel(filename string, gamma bool) (*Model, error) {
	model := &Model{
		directory:      path.Dir(filename),
		gamma:          gamma,
		texturesLoaded: map[string]MeshTexture{},
	}

	doc, err := gltf.Open(filename)
	if err != nil {
		log.Printf("ERROR::GLTF:: %v", err)
		return nil, fmt.Errorf("could not open model %q: %w", filename, err)
	}

	visited := map[int]bool{}
	for _, root := range sceneRoots(doc) {
		if err = model.processNode(doc, root, mgl32.Ident4(), visited); err != nil {
			log.Printf("ERROR::GLTF:: %v", err)
			model.Delete()
			return nil, fmt.Errorf("could not load model %q: %w", filename, err)
		}
	}

	return model, nil
}

// sceneRoots returns the root nodes of the default scene, or every parentless node when there is none.
func sceneRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		for _, child := range node.Children {
			if child >= 0 && child < len(hasParent) {
				hasParent[child] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// NodeTransform returns the local transform of a node from either its matrix or its TRS properties.
func NodeTransform(node *gltf.Node) mgl32.Mat4 {
	if node.Matrix != [16]float64{} && node.Matrix != gltf.DefaultMatrix {
		var m mgl32.Mat4
		for i, v := range node.Matrix {
			m[i] = float32(v)
		}
		return m
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// processNode walks the node tree. Every node is visited at most once, a node reached twice is an error.
func (model *Model) processNode(doc *gltf.Document, index int, parent mgl32.Mat4, visited map[int]bool) error {
	if index < 0 || index >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", index)
	}
	if visited[index] {
		return fmt.Errorf("node %d is reached more than once", index)
	}
	visited[index] = true
	node := doc.Nodes[index]
	transform := parent.Mul4(NodeTransform(node))

	if node.Mesh != nil {
		if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) {
			return fmt.Errorf("mesh index %d of node %d out of range", *node.Mesh, index)
		}
		gm := doc.Meshes[*node.Mesh]
		for i, prim := range gm.Primitives {
			name := gm.Name
			if name == "" {
				name = fmt.Sprintf("mesh%d", *node.Mesh)
			}
			name = fmt.Sprintf("%s.%d", name, i)

			mesh, err := model.processPrimitive(doc, name, prim, transform)
			if err != nil {
				return fmt.Errorf("could not load primitive %q: %w", name, err)
			}
			if mesh != nil {
				model.Meshes = append(model.Meshes, mesh)
			}
		}
	}

	for _, child := range node.Children {
		if err := model.processNode(doc, child, transform, visited); err != nil {
			return err
		}
	}
	return nil
}

// ReadVertices reads the vertex attributes of a triangle primitive. Missing normals point up,
// missing tangents are computed from the uvs.
func ReadVertices(doc *gltf.Document, prim *gltf.Primitive) ([]Vertex, []uint32, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil, fmt.Errorf("primitive has no %s attribute", gltf.POSITION)
	}
	acc, err := accessor(doc, posIdx)
	if err != nil {
		return nil, nil, err
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read positions: %w", err)
	}

	var normals, tangents [][3]float32
	var tangents4 [][4]float32
	var uvs [][2]float32
	var joints [][4]uint16
	var weights [][4]float32

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acc, err = accessor(doc, idx); err != nil {
			return nil, nil, err
		}
		if normals, err = modeler.ReadNormal(doc, acc, nil); err != nil {
			return nil, nil, fmt.Errorf("could not read normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acc, err = accessor(doc, idx); err != nil {
			return nil, nil, err
		}
		if uvs, err = modeler.ReadTextureCoord(doc, acc, nil); err != nil {
			return nil, nil, fmt.Errorf("could not read uvs: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		if acc, err = accessor(doc, idx); err != nil {
			return nil, nil, err
		}
		if tangents4, err = modeler.ReadTangent(doc, acc, nil); err != nil {
			return nil, nil, fmt.Errorf("could not read tangents: %w", err)
		}
		tangents = make([][3]float32, len(tangents4))
		for i, t := range tangents4 {
			tangents[i] = [3]float32{t[0], t[1], t[2]}
		}
	}
	if idx, ok := prim.Attributes[gltf.JOINTS_0]; ok {
		if acc, err = accessor(doc, idx); err != nil {
			return nil, nil, err
		}
		if joints, err = modeler.ReadJoints(doc, acc, nil); err != nil {
			return nil, nil, fmt.Errorf("could not read joints: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.WEIGHTS_0]; ok {
		if acc, err = accessor(doc, idx); err != nil {
			return nil, nil, err
		}
		if weights, err = modeler.ReadWeights(doc, acc, nil); err != nil {
			return nil, nil, fmt.Errorf("could not read weights: %w", err)
		}
	}

	vertices := make([]Vertex, len(positions))
	for i, p := range positions {
		v := Vertex{
			Position: p,
			Normal:   mgl32.Vec3{0, 1, 0},
		}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.TexCoords = uvs[i]
		}
		if i < len(joints) {
			for j, id := range joints[i] {
				v.BoneIDs[j] = int32(id)
			}
		} else {
			v.BoneIDs = [MaxBoneInfluence]int32{-1, -1, -1, -1}
		}
		if i < len(weights) {
			v.Weights = weights[i]
		}
		vertices[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		if acc, err = accessor(doc, *prim.Indices); err != nil {
			return nil, nil, err
		}
		if indices, err = modeler.ReadIndices(doc, acc, nil); err != nil {
			return nil, nil, fmt.Errorf("could not read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, nil, fmt.Errorf("index %d out of range of %d vertices", idx, len(vertices))
		}
	}

	if len(tangents) == len(vertices) {
		for i := range vertices {
			vertices[i].Tangent = tangents[i]
			// glTF stores the bitangent sign in w
			vertices[i].Bitangent = vertices[i].Normal.Cross(tangents[i]).Mul(tangents4[i][3])
		}
	} else if len(uvs) > 0 {
		ComputeTangents(vertices, indices)
	}

	return vertices, indices, nil
}

// BakeTransform moves vertices from node space into model space.
func BakeTransform(vertices []Vertex, transform mgl32.Mat4) {
	if transform == mgl32.Ident4() {
		return
	}
	normalMat := transform.Mat3().Inv().Transpose()
	for i := range vertices {
		v := &vertices[i]
		v.Position = mgl32.TransformCoordinate(v.Position, transform)
		v.Normal = normalMat.Mul3x1(v.Normal).Normalize()
		if v.Tangent.LenSqr() > 0 {
			v.Tangent = transform.Mat3().Mul3x1(v.Tangent).Normalize()
		}
		if v.Bitangent.LenSqr() > 0 {
			v.Bitangent = transform.Mat3().Mul3x1(v.Bitangent).Normalize()
		}
	}
}

func (model *Model) processPrimitive(doc *gltf.Document, name string, prim *gltf.Primitive, transform mgl32.Mat4) (*Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		log.Printf("skipping primitive %q with mode %v, only triangles are supported", name, prim.Mode)
		return nil, nil
	}

	if prim.Material != nil && (*prim.Material < 0 || *prim.Material >= len(doc.Materials)) {
		return nil, fmt.Errorf("material index %d out of range", *prim.Material)
	}

	vertices, indices, err := ReadVertices(doc, prim)
	if err != nil {
		return nil, err
	}
	BakeTransform(vertices, transform)

	var textures []MeshTexture
	if prim.Material != nil {
		textures = model.loadMaterialTextures(doc, doc.Materials[*prim.Material])
	}

	return NewMesh(name, vertices, indices, textures), nil
}

func accessor(doc *gltf.Document, index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	return doc.Accessors[index], nil
}

// MaterialSlots maps the texture slots of a glTF material onto mesh texture types.
func MaterialSlots(mat *gltf.Material) map[string]int {
	slots := map[string]int{}
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorTexture != nil {
			slots[TextureDiffuse] = pbr.BaseColorTexture.Index
		}
		if pbr.MetallicRoughnessTexture != nil {
			slots[TextureSpecular] = pbr.MetallicRoughnessTexture.Index
		}
	}
	if mat.NormalTexture != nil && mat.NormalTexture.Index != nil {
		slots[TextureNormal] = *mat.NormalTexture.Index
	}
	if mat.OcclusionTexture != nil && mat.OcclusionTexture.Index != nil {
		slots[TextureHeight] = *mat.OcclusionTexture.Index
	}
	return slots
}

var textureSlotOrder = []string{TextureDiffuse, TextureSpecular, TextureNormal, TextureHeight}

func (model *Model) loadMaterialTextures(doc *gltf.Document, mat *gltf.Material) []MeshTexture {
	slots := MaterialSlots(mat)
	var textures []MeshTexture
	for _, typ := range textureSlotOrder {
		index, ok := slots[typ]
		if !ok {
			continue
		}
		tex, err := model.loadTexture(doc, index, typ == TextureDiffuse && model.gamma)
		if err != nil {
			log.Printf("could not load %s of material %q: %v", typ, mat.Name, err)
			continue
		}
		tex.Type = typ
		textures = append(textures, tex)
	}
	return textures
}

func (model *Model) loadTexture(doc *gltf.Document, index int, gamma bool) (MeshTexture, error) {
	if index < 0 || index >= len(doc.Textures) || doc.Textures[index].Source == nil {
		return MeshTexture{}, fmt.Errorf("texture %d has no image", index)
	}
	imgIndex := *doc.Textures[index].Source
	if imgIndex < 0 || imgIndex >= len(doc.Images) {
		return MeshTexture{}, fmt.Errorf("image index %d of texture %d out of range", imgIndex, index)
	}
	img := doc.Images[imgIndex]

	key := img.URI
	if img.BufferView != nil || img.IsEmbeddedResource() {
		key = fmt.Sprintf("image:%d", imgIndex)
	}
	if loaded, ok := model.texturesLoaded[key]; ok {
		return loaded, nil
	}

	var tex libgl.UnboundTexture
	var err error
	switch {
	case img.BufferView != nil && (*img.BufferView < 0 || *img.BufferView >= len(doc.BufferViews)):
		err = fmt.Errorf("buffer view index %d of image %d out of range", *img.BufferView, imgIndex)
	case img.BufferView != nil:
		var data []byte
		data, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err == nil {
			tex, err = TextureFromMemory(key, data, gamma)
		}
	case img.IsEmbeddedResource():
		var data []byte
		data, err = img.MarshalData()
		if err == nil {
			tex, err = TextureFromMemory(key, data, gamma)
		}
	default:
		tex, err = TextureFromFile(img.URI, model.directory, gamma)
	}
	if err != nil {
		return MeshTexture{}, err
	}

	loaded := MeshTexture{Texture: tex, Path: key}
	model.texturesLoaded[key] = loaded
	return loaded, nil
}

func (model *Model) Draw(shader *libgl.Shader) {
	for _, mesh := range model.Meshes {
		mesh.Draw(shader)
	}
}

func (model *Model) DrawDiffuse(unit int, fallback libgl.UnboundTexture) {
	for _, mesh := range model.Meshes {
		mesh.DrawDiffuse(unit, fallback)
	}
}

func (model *Model) DrawGeometry() {
	for _, mesh := range model.Meshes {
		mesh.DrawGeometry()
	}
}

func (model *Model) Delete() {
	for _, mesh := range model.Meshes {
		mesh.Delete()
	}
	var textures []libutil.Deleter
	for _, tex := range model.texturesLoaded {
		textures = append(textures, tex.Texture)
	}
	libutil.Release(textures)
	model.Meshes = nil
	model.texturesLoaded = map[string]MeshTexture{}
}

package systems

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/decker502/construct/pkg/components"
	"github.com/decker502/construct/pkg/ecs"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// 等轴测投影参数
var (
	isoCos = math.Cos(math.Pi / 6)
	isoSin = math.Sin(math.Pi / 6)

	// 指向观察者的方向，法线与其点积为正的面可见
	viewDir = mgl64.Vec3{1, 1, 1}.Normalize()

	// 光照方向（右上前方）
	lightDir = mgl64.Vec3{0.4, 1, 0.7}.Normalize()
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// boxFace 立方体的一个面：法线和四个角（局部坐标，单位立方体 ±0.5）
type boxFace struct {
	normal  mgl64.Vec3
	corners [4]mgl64.Vec3
}

var unitBoxFaces = [6]boxFace{
	{normal: mgl64.Vec3{0, 1, 0}, corners: [4]mgl64.Vec3{{-.5, .5, -.5}, {.5, .5, -.5}, {.5, .5, .5}, {-.5, .5, .5}}},
	{normal: mgl64.Vec3{0, -1, 0}, corners: [4]mgl64.Vec3{{-.5, -.5, -.5}, {-.5, -.5, .5}, {.5, -.5, .5}, {.5, -.5, -.5}}},
	{normal: mgl64.Vec3{1, 0, 0}, corners: [4]mgl64.Vec3{{.5, -.5, -.5}, {.5, -.5, .5}, {.5, .5, .5}, {.5, .5, -.5}}},
	{normal: mgl64.Vec3{-1, 0, 0}, corners: [4]mgl64.Vec3{{-.5, -.5, -.5}, {-.5, .5, -.5}, {-.5, .5, .5}, {-.5, -.5, .5}}},
	{normal: mgl64.Vec3{0, 0, 1}, corners: [4]mgl64.Vec3{{-.5, -.5, .5}, {-.5, .5, .5}, {.5, .5, .5}, {.5, -.5, .5}}},
	{normal: mgl64.Vec3{0, 0, -1}, corners: [4]mgl64.Vec3{{-.5, -.5, -.5}, {.5, -.5, -.5}, {.5, .5, -.5}, {-.5, .5, -.5}}},
}

// IsoCamera 等轴测相机：世界原点投影到 (OriginX, OriginY)，1 个世界单位 = Scale 像素
type IsoCamera struct {
	OriginX float64
	OriginY float64
	Scale   float64
}

// Project 世界坐标投影到屏幕坐标
func (c IsoCamera) Project(p mgl64.Vec3) (float64, float64) {
	sx := c.OriginX + (p.X()-p.Z())*isoCos*c.Scale
	sy := c.OriginY + (p.X()+p.Z())*isoSin*c.Scale - p.Y()*c.Scale
	return sx, sy
}

// depthOf 画家算法深度：越小越远，先画
func depthOf(p mgl64.Vec3) float64 {
	return p.Dot(viewDir)
}

// BoxRenderSystem 以等轴测投影绘制所有带 RenderBoxComponent 的实体
//
// 不依赖任何贴图资源：每个面是一对三角形，按法线与光照方向着色。
// 实体按中心深度从远到近排序后绘制。
type BoxRenderSystem struct {
	entityManager *ecs.EntityManager
	camera        IsoCamera

	// 复用的顶点/索引缓冲，避免每帧分配
	vertices []ebiten.Vertex
	indices  []uint16
}

// NewBoxRenderSystem 创建渲染系统
func NewBoxRenderSystem(em *ecs.EntityManager, camera IsoCamera) *BoxRenderSystem {
	return &BoxRenderSystem{
		entityManager: em,
		camera:        camera,
		vertices:      make([]ebiten.Vertex, 0, 256),
		indices:       make([]uint16, 0, 384),
	}
}

// SetEntityManager 切换到新的世界（组装体重新搭建后调用）
func (s *BoxRenderSystem) SetEntityManager(em *ecs.EntityManager) {
	s.entityManager = em
}

// Camera 返回当前相机
func (s *BoxRenderSystem) Camera() IsoCamera {
	return s.camera
}

// DrawFloor 绘制地面矩形
func (s *BoxRenderSystem) DrawFloor(screen *ebiten.Image, floor FloorBounds, clr color.RGBA) {
	corners := [4]mgl64.Vec3{
		{-floor.HalfWidth, floor.Y, -floor.HalfDepth},
		{floor.HalfWidth, floor.Y, -floor.HalfDepth},
		{floor.HalfWidth, floor.Y, floor.HalfDepth},
		{-floor.HalfWidth, floor.Y, floor.HalfDepth},
	}
	s.vertices = s.vertices[:0]
	s.indices = s.indices[:0]
	s.appendQuad(corners, clr)
	screen.DrawTriangles(s.vertices, s.indices, whiteSubImage, nil)
}

// Draw 绘制所有方块
func (s *BoxRenderSystem) Draw(screen *ebiten.Image) {
	entities := s.SortedBoxes()

	s.vertices = s.vertices[:0]
	s.indices = s.indices[:0]

	for _, id := range entities {
		tr, box, _ := ecs.GetComponents2[*components.TransformComponent, *components.RenderBoxComponent](s.entityManager, id)
		s.appendBox(tr, box)

		// uint16 索引上限，提前提交
		if len(s.vertices) > math.MaxUint16-32 {
			screen.DrawTriangles(s.vertices, s.indices, whiteSubImage, nil)
			s.vertices = s.vertices[:0]
			s.indices = s.indices[:0]
		}
	}

	if len(s.indices) > 0 {
		screen.DrawTriangles(s.vertices, s.indices, whiteSubImage, nil)
	}
}

// SortedBoxes 返回按深度从远到近排序的方块实体
func (s *BoxRenderSystem) SortedBoxes() []ecs.EntityID {
	entities := ecs.GetEntitiesWith2[*components.TransformComponent, *components.RenderBoxComponent](s.entityManager)

	depth := make(map[ecs.EntityID]float64, len(entities))
	for _, id := range entities {
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		depth[id] = depthOf(tr.Position)
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return depth[entities[i]] < depth[entities[j]]
	})
	return entities
}

// appendBox 追加一个方块的可见面
func (s *BoxRenderSystem) appendBox(tr *components.TransformComponent, box *components.RenderBoxComponent) {
	rot := tr.Rotation
	for _, face := range unitBoxFaces {
		normal := rot.Rotate(face.normal)
		if normal.Dot(viewDir) <= 0 {
			continue
		}

		var world [4]mgl64.Vec3
		for i, c := range face.corners {
			local := mgl64.Vec3{c.X() * box.Size.X(), c.Y() * box.Size.Y(), c.Z() * box.Size.Z()}
			world[i] = tr.Position.Add(rot.Rotate(local))
		}
		s.appendQuad(world, shade(box.Color, normal))
	}
}

// appendQuad 追加一个四边形（两个三角形）
func (s *BoxRenderSystem) appendQuad(corners [4]mgl64.Vec3, clr color.RGBA) {
	base := uint16(len(s.vertices))
	r := float32(clr.R) / 255
	g := float32(clr.G) / 255
	b := float32(clr.B) / 255
	a := float32(clr.A) / 255

	for _, c := range corners {
		x, y := s.camera.Project(c)
		s.vertices = append(s.vertices, ebiten.Vertex{
			DstX: float32(x), DstY: float32(y),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		})
	}
	s.indices = append(s.indices, base, base+1, base+2, base, base+2, base+3)
}

// shade 按法线与光照方向调整亮度（0.55 ~ 1.0）
func shade(c color.RGBA, normal mgl64.Vec3) color.RGBA {
	k := 0.55 + 0.45*math.Max(0, normal.Dot(lightDir))
	return color.RGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}

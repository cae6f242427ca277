package physac

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Manifold describes the contact between two overlapping bodies. Normal
// points from A to B.
type Manifold struct {
	A, B            *Body
	Penetration     float64
	Normal          mgl64.Vec2
	Contacts        [2]mgl64.Vec2
	ContactsCount   int
	Restitution     float64
	DynamicFriction float64
	StaticFriction  float64
}

// Collide runs the separating-axis test between a and b and, when they
// overlap, clips the incident face against the reference face to produce up
// to two contact points. Pairs with a one-sided wall skip the SAT and use the
// wall normal alone.
func Collide(a, b *Body) (Manifold, error) {
	switch {
	case a.Shape.OneSided:
		return collideWall(a, b, false)
	case b.Shape.OneSided:
		return collideWall(b, a, true)
	}

	m := Manifold{A: a, B: b}

	faceA, penetrationA := findAxisLeastPenetration(a, b)
	if penetrationA >= 0 {
		return m, nil
	}
	faceB, penetrationB := findAxisLeastPenetration(b, a)
	if penetrationB >= 0 {
		return m, nil
	}

	ref, inc, refIndex, flip := a, b, faceA, false
	if !biasGreaterThan(penetrationA, penetrationB) {
		ref, inc, refIndex, flip = b, a, faceB, true
	}

	incident := findIncidentFace(ref, inc, refIndex)

	refVerts := ref.Shape.Vertices
	v1 := ref.LocalToWorld(refVerts[refIndex])
	v2 := ref.LocalToWorld(refVerts[next(refIndex, len(refVerts))])

	sidePlaneNormal, length := normalize(v2.Sub(v1))
	if length <= epsilon {
		return m, &CollisionResolutionError{A: a.ID, B: b.ID, Reason: "degenerate reference face"}
	}
	refFaceNormal := mgl64.Vec2{sidePlaneNormal[1], -sidePlaneNormal[0]}

	refC := refFaceNormal.Dot(v1) + ref.Shape.Radius
	negSide := -sidePlaneNormal.Dot(v1)
	posSide := sidePlaneNormal.Dot(v2)

	if clip(sidePlaneNormal.Mul(-1), negSide, &incident) < 2 {
		return m, nil
	}
	if clip(sidePlaneNormal, posSide, &incident) < 2 {
		return m, nil
	}

	if flip {
		m.Normal = refFaceNormal.Mul(-1)
	} else {
		m.Normal = refFaceNormal
	}

	count := 0
	for _, p := range incident {
		separation := refFaceNormal.Dot(p) - refC - inc.Shape.Radius
		if separation <= 0 {
			m.Contacts[count] = p.Sub(refFaceNormal.Mul(inc.Shape.Radius))
			m.Penetration += -separation
			count++
		}
	}
	if count > 0 {
		m.Penetration /= float64(count)
	}
	m.ContactsCount = count

	if count > 0 && !finite(m.Penetration) {
		m.ContactsCount = 0
		return m, &CollisionResolutionError{A: a.ID, B: b.ID, Reason: "non-finite penetration"}
	}
	return m, nil
}

// collideWall tests body against the free side of a one-sided wall. The
// wall normal is the only separating axis, so a body whose centre has crossed
// the wall line is still pushed back to the free side. Vertices count when
// their projection falls within the wall extent. Penetration is the deepest
// vertex, and the contacts are the outermost penetrating vertices along the
// wall.
func collideWall(wall, body *Body, flip bool) (Manifold, error) {
	m := Manifold{A: wall, B: body}
	if flip {
		m.A, m.B = body, wall
	}

	v1 := wall.LocalToWorld(wall.Shape.Vertices[0])
	v2 := wall.LocalToWorld(wall.Shape.Vertices[1])
	tangent, length := normalize(v2.Sub(v1))
	if length <= epsilon {
		return m, &CollisionResolutionError{A: m.A.ID, B: m.B.ID, Reason: "degenerate reference face"}
	}
	normal := wall.transform.Mul2x1(wall.Shape.inward())
	surface := normal.Dot(v1) + wall.Shape.Radius
	margin := wall.Shape.Radius

	var (
		lo, hi     mgl64.Vec2
		loT, hiT   = fltMax, -fltMax
		depth      float64
		penetrates bool
	)
	for _, local := range body.Shape.Vertices {
		p := body.LocalToWorld(local)
		t := tangent.Dot(p.Sub(v1))
		if t < -margin || t > length+margin {
			continue
		}
		separation := normal.Dot(p) - surface - body.Shape.Radius
		if separation > 0 {
			continue
		}
		penetrates = true
		depth = math.Max(depth, -separation)
		p = p.Sub(normal.Mul(body.Shape.Radius))
		if t < loT {
			lo, loT = p, t
		}
		if t > hiT {
			hi, hiT = p, t
		}
	}
	if !penetrates {
		return m, nil
	}

	m.Normal = normal
	if flip {
		m.Normal = normal.Mul(-1)
	}
	m.Penetration = depth
	m.Contacts[0] = lo
	m.ContactsCount = 1
	if hiT-loT > epsilon {
		m.Contacts[1] = hi
		m.ContactsCount = 2
	}
	return m, nil
}

// findAxisLeastPenetration returns the face of a whose normal separates the
// two bodies best, and the signed distance along it (negative when they
// overlap). Both radii are subtracted so segments behave as capsules.
func findAxisLeastPenetration(a, b *Body) (int, float64) {
	bestDistance := -fltMax
	bestIndex := 0
	buT := b.transform.Transpose()
	radii := a.Shape.Radius + b.Shape.Radius

	for i, n := range a.Shape.Normals {
		normal := buT.Mul2x1(a.transform.Mul2x1(n))
		support := getSupport(b.Shape, normal.Mul(-1))

		vertex := buT.Mul2x1(a.LocalToWorld(a.Shape.Vertices[i]).Sub(b.Position))
		distance := normal.Dot(support.Sub(vertex)) - radii
		if distance > bestDistance {
			bestDistance = distance
			bestIndex = i
		}
	}
	return bestIndex, bestDistance
}

// getSupport returns the vertex of s furthest along dir.
func getSupport(s Shape, dir mgl64.Vec2) mgl64.Vec2 {
	bestProjection := -fltMax
	var bestVertex mgl64.Vec2
	for _, v := range s.Vertices {
		if projection := v.Dot(dir); projection > bestProjection {
			bestVertex = v
			bestProjection = projection
		}
	}
	return bestVertex
}

// findIncidentFace returns, in world space, the face of inc most
// anti-parallel to the reference face normal.
func findIncidentFace(ref, inc *Body, index int) [2]mgl64.Vec2 {
	referenceNormal := inc.transform.Transpose().Mul2x1(ref.transform.Mul2x1(ref.Shape.Normals[index]))

	incidentFace := 0
	minDot := fltMax
	for i, n := range inc.Shape.Normals {
		if dot := referenceNormal.Dot(n); dot < minDot {
			minDot = dot
			incidentFace = i
		}
	}
	verts := inc.Shape.Vertices
	return [2]mgl64.Vec2{
		inc.LocalToWorld(verts[incidentFace]),
		inc.LocalToWorld(verts[next(incidentFace, len(verts))]),
	}
}

// clip keeps the part of face behind the plane n·x = c and returns how many
// points survived.
func clip(n mgl64.Vec2, c float64, face *[2]mgl64.Vec2) int {
	sp := 0
	out := *face
	distanceA := n.Dot(face[0]) - c
	distanceB := n.Dot(face[1]) - c

	if distanceA <= 0 {
		out[sp] = face[0]
		sp++
	}
	if distanceB <= 0 {
		out[sp] = face[1]
		sp++
	}
	if distanceA*distanceB < 0 {
		alpha := distanceA / (distanceA - distanceB)
		out[sp] = face[0].Add(face[1].Sub(face[0]).Mul(alpha))
		sp++
	}
	*face = out
	return sp
}

// prepare mixes the material of both bodies and drops restitution for
// contacts slower than what gravity adds in one step.
func (m *Manifold) prepare(gravity mgl64.Vec2, dt float64) {
	a, b := m.A, m.B
	m.Restitution = math.Sqrt(a.Restitution * b.Restitution)
	m.StaticFriction = math.Sqrt(a.StaticFriction * b.StaticFriction)
	m.DynamicFriction = math.Sqrt(a.DynamicFriction * b.DynamicFriction)

	restingSpeedSqr := lenSqr(gravity.Mul(dt)) + epsilon
	for i := 0; i < m.ContactsCount; i++ {
		if lenSqr(m.relativeVelocity(i)) < restingSpeedSqr {
			m.Restitution = 0
		}
	}
}

func (m *Manifold) relativeVelocity(i int) mgl64.Vec2 {
	a, b := m.A, m.B
	radiusA := m.Contacts[i].Sub(a.Position)
	radiusB := m.Contacts[i].Sub(b.Position)
	return b.Velocity.Add(CrossScalar(b.AngularVelocity, radiusB)).
		Sub(a.Velocity).Sub(CrossScalar(a.AngularVelocity, radiusA))
}

// applyImpulse resolves the normal and friction impulses of every contact
// point once.
func (m *Manifold) applyImpulse() {
	a, b := m.A, m.B
	if a.InverseMass+b.InverseMass <= epsilon {
		return
	}

	for i := 0; i < m.ContactsCount; i++ {
		radiusA := m.Contacts[i].Sub(a.Position)
		radiusB := m.Contacts[i].Sub(b.Position)

		contactVelocity := m.relativeVelocity(i).Dot(m.Normal)
		if contactVelocity > 0 {
			continue
		}

		raCrossN := Cross(radiusA, m.Normal)
		rbCrossN := Cross(radiusB, m.Normal)
		inverseMassSum := a.InverseMass + b.InverseMass +
			raCrossN*raCrossN*a.InverseInertia + rbCrossN*rbCrossN*b.InverseInertia

		impulse := -(1 + m.Restitution) * contactVelocity
		impulse /= inverseMassSum
		impulse /= float64(m.ContactsCount)
		applyPair(a, b, radiusA, radiusB, m.Normal.Mul(impulse))

		rv := m.relativeVelocity(i)
		tangent, length := normalize(rv.Sub(m.Normal.Mul(rv.Dot(m.Normal))))
		if length <= epsilon {
			continue
		}

		impulseTangent := -rv.Dot(tangent)
		impulseTangent /= inverseMassSum
		impulseTangent /= float64(m.ContactsCount)
		if math.Abs(impulseTangent) <= epsilon {
			continue
		}

		// Coulomb friction: stick below the static cone, slide otherwise.
		var tangentImpulse mgl64.Vec2
		if math.Abs(impulseTangent) < impulse*m.StaticFriction {
			tangentImpulse = tangent.Mul(impulseTangent)
		} else {
			tangentImpulse = tangent.Mul(-impulse * m.DynamicFriction)
		}
		applyPair(a, b, radiusA, radiusB, tangentImpulse)
	}
}

func applyPair(a, b *Body, radiusA, radiusB, impulse mgl64.Vec2) {
	if a.Kind == Dynamic {
		a.Velocity = a.Velocity.Sub(impulse.Mul(a.InverseMass))
		a.AngularVelocity -= a.InverseInertia * Cross(radiusA, impulse)
	}
	if b.Kind == Dynamic {
		b.Velocity = b.Velocity.Add(impulse.Mul(b.InverseMass))
		b.AngularVelocity += b.InverseInertia * Cross(radiusB, impulse)
	}
}

// correctPositions pushes the bodies apart along the normal in proportion
// to their inverse masses. allowance is the penetration left alone to avoid
// jitter; percent is the fraction of the rest removed per step between two
// dynamic bodies. Against a static body the whole excess is removed, so a
// resting body never ends a step more than allowance inside a wall.
func (m *Manifold) correctPositions(allowance, percent float64) {
	a, b := m.A, m.B
	inverseMassSum := a.InverseMass + b.InverseMass
	if inverseMassSum <= epsilon {
		return
	}
	if a.Kind == Static || b.Kind == Static {
		percent = 1
	}
	depth := math.Max(m.Penetration-allowance, 0)
	correction := m.Normal.Mul(depth / inverseMassSum * percent)
	if a.Kind == Dynamic {
		a.Position = a.Position.Sub(correction.Mul(a.InverseMass))
	}
	if b.Kind == Dynamic {
		b.Position = b.Position.Add(correction.Mul(b.InverseMass))
	}
}

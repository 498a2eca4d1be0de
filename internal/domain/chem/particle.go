package chem

// ParticleKind identifies a nuclear sub-particle.
type ParticleKind int

const (
	AlphaParticle ParticleKind = iota + 1
	BetaParticle
	GammaRay
	Neutrino
	AntiNeutrino
	Neutron
	Proton
	Positron
	PhysicalElectron
	// ChemicalElectron is the electron of redox half-equations, written e^{-}.
	ChemicalElectron
)

type particleInfo struct {
	name    string
	command string
	mass    int
	atomic  int
	charge  int64
}

var particles = map[ParticleKind]particleInfo{
	AlphaParticle:    {name: "alpha particle", command: "alphaparticle", mass: 4, atomic: 2, charge: 2},
	BetaParticle:     {name: "beta particle", command: "betaparticle", mass: 0, atomic: -1, charge: -1},
	GammaRay:         {name: "gamma ray", command: "gammaray", mass: 0, atomic: 0, charge: 0},
	Neutrino:         {name: "neutrino", command: "neutrino", mass: 0, atomic: 0, charge: 0},
	AntiNeutrino:     {name: "antineutrino", command: "antineutrino", mass: 0, atomic: 0, charge: 0},
	Neutron:          {name: "neutron", command: "neutron", mass: 1, atomic: 0, charge: 0},
	Proton:           {name: "proton", command: "proton", mass: 1, atomic: 1, charge: 1},
	Positron:         {name: "positron", command: "positron", mass: 0, atomic: 1, charge: 1},
	PhysicalElectron: {name: "electron", command: "electron", mass: 0, atomic: -1, charge: -1},
	ChemicalElectron: {name: "electron", command: "", mass: 0, atomic: -1, charge: -1},
}

// ParticleByCommand resolves a backslash command such as \alphaparticle
// (given without the backslash).
func ParticleByCommand(cmd string) (ParticleKind, bool) {
	for k, info := range particles {
		if info.command != "" && info.command == cmd {
			return k, true
		}
	}
	return 0, false
}

func (k ParticleKind) String() string { return particles[k].name }

// MassNumber is the true mass number of the particle.
func (k ParticleKind) MassNumber() int { return particles[k].mass }

// AtomicNumber is the true atomic (charge) number of the particle.
func (k ParticleKind) AtomicNumber() int { return particles[k].atomic }

func (k ParticleKind) Charge() Fraction { return FromInt(particles[k].charge) }

// Particle is a nuclear sub-particle. Particles written with a leading
// ^{A}_{Z} carry those declared numbers next to the true ones.
type Particle struct {
	Kind     ParticleKind
	declared bool
	mass     int
	atomic   int
}

func NewParticle(kind ParticleKind) *Particle {
	return &Particle{Kind: kind}
}

// NewDeclaredParticle returns a particle written with explicit mass and
// atomic numbers.
func NewDeclaredParticle(kind ParticleKind, mass, atomic int) *Particle {
	return &Particle{Kind: kind, declared: true, mass: mass, atomic: atomic}
}

// Declared returns the user-written numbers, if any.
func (p *Particle) Declared() (mass, atomic int, ok bool) {
	return p.mass, p.atomic, p.declared
}

func (*Particle) formula() {}

// Equal treats every particle of the same kind as the same species.
func (p *Particle) Equal(other Formula) bool {
	o, ok := other.(*Particle)
	return ok && o != nil && p.Kind == o.Kind
}

func (p *Particle) Charge() Fraction { return p.Kind.Charge() }

func (p *Particle) AtomCount() AtomCount { return AtomCount{} }

func (p *Particle) String() string {
	var body string
	if p.Kind == ChemicalElectron {
		body = "e" + chargeSuffix(p.Kind.Charge())
	} else {
		body = `\` + particles[p.Kind].command
	}
	if p.declared {
		return nuclearPrefix(p.mass, p.atomic) + body
	}
	return body
}

func (p *Particle) valid() bool {
	return !p.declared || (p.mass == p.Kind.MassNumber() && p.atomic == p.Kind.AtomicNumber())
}

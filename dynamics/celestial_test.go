package dynamics

import "testing"

func TestCelestialObjectFromString(t *testing.T) {
	for _, body := range []CelestialObject{Sun, Earth, Mars} {
		got, err := CelestialObjectFromString(body.Name)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equals(body) {
			t.Fatalf("got %s for %s", got, body)
		}
	}
	if _, err := CelestialObjectFromString(" EARTH "); err != nil {
		t.Fatal("names are case insensitive")
	}
	if _, err := CelestialObjectFromString("Vulcan"); err == nil {
		t.Fatal("Vulcan does not exist")
	}
	if Earth.Equals(Mars) {
		t.Fatal("Earth is not Mars")
	}
}

func TestThrusterFromString(t *testing.T) {
	th, err := ThrusterFromString("HERMeS", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if thrust, isp := th.Thrust(); thrust != 0.680 || isp != 2960 {
		t.Fatalf("unexpected HERMeS %f %f", thrust, isp)
	}
	th, err = ThrusterFromString("generic", 1.2, 3500)
	if err != nil {
		t.Fatal(err)
	}
	if thrust, isp := th.Thrust(); thrust != 1.2 || isp != 3500 {
		t.Fatalf("unexpected generic %f %f", thrust, isp)
	}
	if _, err := ThrusterFromString("generic", 0, 3500); err == nil {
		t.Fatal("a generic thruster needs a thrust")
	}
	if _, err := ThrusterFromString("warp", 1, 1); err == nil {
		t.Fatal("warp drives are not supported")
	}
}

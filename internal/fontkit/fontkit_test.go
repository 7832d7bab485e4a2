package fontkit

import "testing"

func TestResolver(t *testing.T) {
	resolver := NewResolver(nil)

	cases := []struct {
		name     string
		fontName string
		bold     bool
		italic   bool
		want     string
		state    State
	}{
		{"exact base font", "Helvetica", false, false, "Helvetica", StateExact},
		{"exact with suffix", "Times-BoldItalic", false, false, "Times-BoldItalic", StateExact},
		{"arial to sans", "Arial", false, false, "Helvetica", StateStyled},
		{"arial bold flag", "Arial", true, false, "Helvetica-Bold", StateStyled},
		{"name carries style", "Calibri-BoldItalic", false, false, "Helvetica-BoldOblique", StateStyled},
		{"times new roman", "TimesNewRomanPSMT", false, false, "Times-Roman", StateStyled},
		{"courier new italic", "Courier New", false, true, "Courier-Oblique", StateStyled},
		{"unknown with flags", "FancyScript", true, false, "Helvetica-Bold", StateFlags},
		{"unknown plain", "FancyScript", false, false, "Helvetica", StatePlain},
		{"empty name", "", false, false, "Helvetica", StatePlain},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolver.Resolve(tc.fontName, tc.bold, tc.italic)
			if got.Name != tc.want {
				t.Errorf("Resolve(%q, %v, %v).Name = %q, want %q",
					tc.fontName, tc.bold, tc.italic, got.Name, tc.want)
			}
			if got.State != tc.state {
				t.Errorf("Resolve(%q).State = %s, want %s", tc.fontName, got.State, tc.state)
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	sans := Resolved{Name: "Helvetica", Family: FamilySans}
	mono := Resolved{Name: "Courier", Family: FamilyMono}

	t.Run("WidthGrowsWithText", func(t *testing.T) {
		short := catalog.Width("NOM1", sans, 11)
		long := catalog.Width("ADRESSE12", sans, 11)
		if short <= 0 {
			t.Fatalf("width of NOM1 is %g", short)
		}
		if long <= short {
			t.Errorf("longer text not wider: %g vs %g", long, short)
		}
	})

	t.Run("WidthScalesWithSize", func(t *testing.T) {
		small := catalog.Width("PRENOM1", sans, 8)
		big := catalog.Width("PRENOM1", sans, 16)
		if big <= small {
			t.Errorf("larger size not wider: %g vs %g", big, small)
		}
	})

	t.Run("MonoIsFixedPitch", func(t *testing.T) {
		narrow := catalog.Width("iiii", mono, 12)
		wide := catalog.Width("MMMM", mono, 12)
		if diff := wide - narrow; diff > 0.01 || diff < -0.01 {
			t.Errorf("mono widths differ: %g vs %g", narrow, wide)
		}
	})

	t.Run("AscentPositive", func(t *testing.T) {
		ascent := catalog.Ascent(sans, 12)
		if ascent <= 0 || ascent >= 12 {
			t.Errorf("ascent %g out of range for 12pt", ascent)
		}
	})
}

func TestFitter(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	fitter := NewFitter(catalog, 4, 0.5, 11)
	sans := Resolved{Name: "Helvetica", Family: FamilySans}

	t.Run("FitsWithoutShrink", func(t *testing.T) {
		res := fitter.Fit("NOM1", sans, 11, 200)
		if res.Size != 11 {
			t.Errorf("size shrunk needlessly: %g", res.Size)
		}
		if res.Floored {
			t.Error("floored on a wide box")
		}
	})

	t.Run("ShrinksToBox", func(t *testing.T) {
		wide := catalog.Width("ADRESSE1", sans, 11)
		res := fitter.Fit("ADRESSE1", sans, 11, wide*0.7)
		if res.Size >= 11 {
			t.Errorf("size not reduced: %g", res.Size)
		}
		if !res.Floored && res.Width > wide*0.7 {
			t.Errorf("claims fit but width %g > box %g", res.Width, wide*0.7)
		}
	})

	t.Run("NeverBelowFloor", func(t *testing.T) {
		res := fitter.Fit("UNREASONABLYLONGTAGTEXT1", sans, 11, 1)
		if res.Size < 4 {
			t.Errorf("size %g below floor", res.Size)
		}
		if !res.Floored {
			t.Error("expected floor to be reported")
		}
	})

	t.Run("FloorTriedWhenStepOvershoots", func(t *testing.T) {
		// With step 0.4 from 5pt the sizes visited are 5, 4.6, 4.2, then the
		// clamped floor 4.0. A box that only fits at 4.0 must not be floored.
		coarse := NewFitter(catalog, 4, 0.4, 11)
		atFloor := catalog.Width("ADRESSE1", sans, 4)
		above := catalog.Width("ADRESSE1", sans, 4.2)
		box := (atFloor + above) / 2

		res := coarse.Fit("ADRESSE1", sans, 5, box)
		if res.Size != 4 {
			t.Errorf("size = %g, want the 4pt floor", res.Size)
		}
		if res.Floored {
			t.Error("floored though the text fits at the floor size")
		}
	})

	t.Run("DefaultSizeForSizelessRuns", func(t *testing.T) {
		res := fitter.Fit("NOM1", sans, 0, 200)
		if res.Size != 11 {
			t.Errorf("size = %g, want the 11pt default", res.Size)
		}
	})

	t.Run("BaselineBelowTop", func(t *testing.T) {
		baseline := fitter.Baseline(sans, 12, 100)
		if baseline <= 100 || baseline >= 112 {
			t.Errorf("baseline %g not between box top and bottom", baseline)
		}
	})
}

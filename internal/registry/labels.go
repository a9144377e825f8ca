package registry

// CropNames maps the crop model's integer class IDs to crop names. The IDs
// and ordering are fixed by the training data; an ID outside the table means
// the model produced a class the service cannot name.
var CropNames = map[int]string{
	1: "Rice", 2: "Maize", 3: "Jute", 4: "Cotton", 5: "Coconut", 6: "Papaya", 7: "Orange",
	8: "Apple", 9: "Muskmelon", 10: "Watermelon", 11: "Grapes", 12: "Mango", 13: "Banana",
	14: "Pomegranate", 15: "Lentil", 16: "Blackgram", 17: "Mungbean", 18: "Mothbeans",
	19: "Pigeonpeas", 20: "Kidneybeans", 21: "Chickpea", 22: "Coffee",
}

// DiseaseLabels maps the disease classifier's output indices to labels.
var DiseaseLabels = map[int]string{
	0: "Healthy",
	1: "Powdery",
	2: "Rust",
}

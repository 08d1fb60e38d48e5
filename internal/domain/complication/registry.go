// Package complication drives probabilistic clinical complications, timed
// against each case's disease course.
package complication

// Urgency tiers and trajectory effects of a fired complication.
const (
	UrgencyCritical = "critical"
	UrgencyUrgent   = "urgent"

	EffectCritical      = "critical"
	EffectDeteriorating = "deteriorating"
)

// Definition describes one possible complication: when it can fire, what
// raises its odds, which treatments prevent it, and what the nurse reports
// when it happens. Message placeholders ({bp_systolic}, {hr}, {spo2}, {rr},
// {temp}, {bp_diastolic}) are filled with live vitals.
type Definition struct {
	Name            string
	Description     string
	BaseProbability float64
	WindowMin       int
	WindowMax       int
	Criteria        map[string]float64
	Prevents        []string
	Urgency         string
	Effect          string
	Message         string
}

// specialtyComplications maps each supported specialty to its complication
// profile. Unknown specialties fall back to the emergency set.
var specialtyComplications = map[string][]Definition{
	"cardiology": {
		{
			Name:            "Cardiogenic Shock",
			Description:     "Pump failure with hypotension and end-organ hypoperfusion following acute MI",
			BaseProbability: 0.15,
			WindowMin:       30, WindowMax: 180,
			Criteria: map[string]float64{"bp_systolic_below": 90, "hr_above": 110},
			Prevents: []string{"pci", "thrombolysis", "streptokinase", "tenecteplase", "aspirin", "heparin", "inotrope", "dobutamine"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient is cold, clammy, and confused. BP has crashed to {bp_systolic}/{bp_diastolic}. Urine output has dropped. I think we're losing him!",
		},
		{
			Name:            "Ventricular Tachycardia",
			Description:     "Sustained VT from ischemic myocardium that can degenerate to VF",
			BaseProbability: 0.12,
			WindowMin:       15, WindowMax: 120,
			Criteria: map[string]float64{"hr_above": 120},
			Prevents: []string{"amiodarone", "lidocaine", "beta_blocker", "metoprolol", "defibrillation", "cardioversion"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Monitor is showing wide-complex tachycardia! HR is {hr}! Patient says chest feels like it's going to explode!",
		},
		{
			Name:            "Acute Heart Failure / Pulmonary Edema",
			Description:     "Fluid backs up into lungs from failing left ventricle",
			BaseProbability: 0.10,
			WindowMin:       30, WindowMax: 240,
			Criteria: map[string]float64{"spo2_below": 92, "rr_above": 24},
			Prevents: []string{"furosemide", "lasix", "nitroglycerin", "ntg", "oxygen", "niv", "bipap", "cpap"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, patient is sitting bolt upright gasping for air. Pink frothy sputum! SpO2 is {spo2}% on room air. I can hear crackles from the doorway!",
		},
		{
			Name:            "Cardiac Arrest — VF/Pulseless VT",
			Description:     "Cardiac arrest from lethal arrhythmia in acute coronary syndrome",
			BaseProbability: 0.05,
			WindowMin:       60, WindowMax: 300,
			Criteria: map[string]float64{"bp_systolic_below": 70, "hr_above": 150},
			Prevents: []string{"pci", "thrombolysis", "amiodarone", "defibrillation"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "CODE BLUE! Patient is unresponsive, no pulse! Monitor shows VF! Starting CPR — we need you here NOW!",
		},
		{
			Name:            "Pericardial Tamponade",
			Description:     "Fluid accumulation in pericardial sac compressing the heart",
			BaseProbability: 0.05,
			WindowMin:       45, WindowMax: 240,
			Criteria: map[string]float64{"bp_systolic_below": 90, "hr_above": 100},
			Prevents: []string{"pericardiocentesis", "echo", "echocardiography"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor, Beck's triad! Muffled heart sounds, JVP is sky high, and BP keeps dropping. I think there's fluid around the heart!",
		},
	},

	"respiratory": {
		{
			Name:            "Respiratory Failure — Type 1",
			Description:     "Hypoxemic respiratory failure requiring mechanical ventilation",
			BaseProbability: 0.15,
			WindowMin:       30, WindowMax: 180,
			Criteria: map[string]float64{"spo2_below": 88, "rr_above": 30},
			Prevents: []string{"oxygen", "niv", "bipap", "cpap", "intubation", "ventilator", "high_flow_nasal_cannula"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! SpO2 is {spo2}% despite oxygen! Patient is using accessory muscles, can barely speak. RR is {rr}. Do we intubate?",
		},
		{
			Name:            "Tension Pneumothorax",
			Description:     "Air trapped in pleural space causing mediastinal shift and cardiovascular collapse",
			BaseProbability: 0.08,
			WindowMin:       15, WindowMax: 120,
			Criteria: map[string]float64{"bp_systolic_below": 90, "spo2_below": 88},
			Prevents: []string{"needle_decompression", "chest_tube", "icd", "intercostal_drain"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Absent breath sounds on one side, trachea is shifted! BP is dropping fast — {bp_systolic}/{bp_diastolic}! I think it's a tension pneumothorax!",
		},
		{
			Name:            "Massive Hemoptysis",
			Description:     "Large-volume blood in airways threatening asphyxiation",
			BaseProbability: 0.06,
			WindowMin:       20, WindowMax: 180,
			Criteria: map[string]float64{"hr_above": 110, "spo2_below": 92},
			Prevents: []string{"tranexamic_acid", "blood_transfusion", "interventional_radiology", "bronchoscopy"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient is coughing up large amounts of bright red blood! There's blood everywhere — I estimate over 200ml already! SpO2 falling!",
		},
		{
			Name:            "ARDS Development",
			Description:     "Acute respiratory distress syndrome with bilateral infiltrates and refractory hypoxemia",
			BaseProbability: 0.10,
			WindowMin:       60, WindowMax: 360,
			Criteria: map[string]float64{"spo2_below": 90, "rr_above": 28},
			Prevents: []string{"lung_protective_ventilation", "prone_positioning", "niv", "intubation", "steroids"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, despite high-flow oxygen, SpO2 won't come above {spo2}%. Bilateral infiltrates on chest X-ray. P/F ratio is very low. This looks like ARDS.",
		},
	},

	"infectious": {
		{
			Name:            "Septic Shock",
			Description:     "Distributive shock from overwhelming infection with vasodilation and organ hypoperfusion",
			BaseProbability: 0.18,
			WindowMin:       30, WindowMax: 120,
			Criteria: map[string]float64{"bp_systolic_below": 90, "hr_above": 110, "temp_above": 38.5},
			Prevents: []string{"antibiotics", "iv_fluids", "noradrenaline", "vasopressor", "normal_saline", "ringer_lactate"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient is burning up at {temp}C but extremities are cold! BP is {bp_systolic}/{bp_diastolic} — not responding to fluids. Altered sensorium. I think we're heading into septic shock!",
		},
		{
			Name:            "Disseminated Intravascular Coagulation",
			Description:     "DIC with simultaneous clotting and bleeding from consumptive coagulopathy",
			BaseProbability: 0.08,
			WindowMin:       60, WindowMax: 240,
			Criteria: map[string]float64{"hr_above": 120, "bp_systolic_below": 90},
			Prevents: []string{"antibiotics", "source_control", "ffp", "cryoprecipitate", "platelet_transfusion"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient is oozing from IV sites and gums. Petechiae all over. I can see blood in the urine bag. Labs show very low platelets and high INR!",
		},
		{
			Name:            "Multi-Organ Dysfunction",
			Description:     "Progressive failure of multiple organ systems from uncontrolled sepsis",
			BaseProbability: 0.10,
			WindowMin:       90, WindowMax: 360,
			Criteria: map[string]float64{"bp_systolic_below": 80, "spo2_below": 90},
			Prevents: []string{"antibiotics", "iv_fluids", "vasopressor", "organ_support", "icu_transfer"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor, patient is oliguric, creatinine is rising, bilirubin is up, and now SpO2 is {spo2}%. Multiple organs are failing. We need ICU!",
		},
		{
			Name:            "Severe Drug Reaction — Anaphylaxis",
			Description:     "Anaphylactic reaction to administered antibiotic",
			BaseProbability: 0.04,
			WindowMin:       5, WindowMax: 60,
			Criteria: map[string]float64{"bp_systolic_below": 90},
			Prevents: []string{"test_dose", "allergy_check", "adrenaline", "epinephrine", "hydrocortisone", "chlorpheniramine"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! After the antibiotic injection, patient has developed rash, lip swelling, and is wheezing! BP dropping to {bp_systolic}/{bp_diastolic}! Looks like anaphylaxis!",
		},
		{
			Name:            "Dengue Hemorrhagic Manifestations",
			Description:     "Plasma leakage and hemorrhagic manifestations in severe dengue",
			BaseProbability: 0.20,
			WindowMin:       60, WindowMax: 240,
			Criteria: map[string]float64{"bp_systolic_below": 100, "hr_above": 100},
			Prevents: []string{"iv_fluids", "platelet_transfusion", "monitoring", "close_observation"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, patient has petechiae and gum bleeding. Hematocrit is rising — plasma leakage! Platelet count is dropping fast. BP narrowing — pulse pressure is only 20mmHg!",
		},
	},

	"neurology": {
		{
			Name:            "Cerebral Herniation",
			Description:     "Brainstem compression from raised intracranial pressure",
			BaseProbability: 0.12,
			WindowMin:       30, WindowMax: 180,
			Criteria: map[string]float64{"bp_systolic_above": 180, "hr_below": 60},
			Prevents: []string{"mannitol", "hypertonic_saline", "decompressive_craniectomy", "neurosurgery_consult", "head_elevation"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! One pupil is fixed and dilated! Patient has Cushing's triad — hypertension, bradycardia, irregular breathing. GCS is dropping! I think the brain is herniating!",
		},
		{
			Name:            "Status Epilepticus",
			Description:     "Continuous seizure activity lasting over five minutes",
			BaseProbability: 0.10,
			WindowMin:       15, WindowMax: 120,
			Criteria: map[string]float64{"hr_above": 120, "temp_above": 38.0},
			Prevents: []string{"lorazepam", "diazepam", "midazolam", "phenytoin", "levetiracetam", "valproate", "anticonvulsant"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient is seizing — tonic-clonic movements, frothing at the mouth! It's been going on for 5 minutes! We need to stop this NOW!",
		},
		{
			Name:            "Raised ICP — Deterioration",
			Description:     "Progressive rise in intracranial pressure with decreasing consciousness",
			BaseProbability: 0.12,
			WindowMin:       30, WindowMax: 240,
			Criteria: map[string]float64{"bp_systolic_above": 160},
			Prevents: []string{"mannitol", "hypertonic_saline", "head_elevation", "ct_scan", "neurosurgery_consult"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, patient's GCS has dropped from 12 to 9. Projectile vomiting. Headache is excruciating. BP is {bp_systolic}/{bp_diastolic} — I think ICP is rising!",
		},
		{
			Name:            "Autonomic Storm",
			Description:     "Paroxysmal sympathetic hyperactivity with tachycardia, hypertension, and posturing",
			BaseProbability: 0.06,
			WindowMin:       60, WindowMax: 300,
			Criteria: map[string]float64{"hr_above": 130, "temp_above": 38.5, "bp_systolic_above": 170},
			Prevents: []string{"beta_blocker", "propranolol", "morphine", "bromocriptine", "sedation", "midazolam"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, patient is pouring sweat, HR is {hr}, BP is {bp_systolic}/{bp_diastolic}, posturing! Temperature is {temp}C. This looks like an autonomic storm!",
		},
	},

	"gastroenterology": {
		{
			Name:            "Massive Upper GI Bleed",
			Description:     "Torrential hematemesis or melena with hemodynamic instability",
			BaseProbability: 0.15,
			WindowMin:       15, WindowMax: 180,
			Criteria: map[string]float64{"hr_above": 110, "bp_systolic_below": 90},
			Prevents: []string{"iv_fluids", "blood_transfusion", "ppi", "pantoprazole", "octreotide", "endoscopy", "sengstaken_tube"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient just vomited a large amount of dark blood — nearly 500ml! HR is {hr}, BP dropping to {bp_systolic}/{bp_diastolic}! We need blood urgently!",
		},
		{
			Name:            "Hepatic Encephalopathy",
			Description:     "Altered consciousness from hepatic failure with asterixis progressing to coma",
			BaseProbability: 0.12,
			WindowMin:       60, WindowMax: 300,
			Prevents: []string{"lactulose", "rifaximin", "protein_restriction", "enema"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, patient has become drowsy and confused. Flapping tremor present. I smell fetor hepaticus. I think the liver is failing — hepatic encephalopathy!",
		},
		{
			Name:            "Spontaneous Bacterial Peritonitis",
			Description:     "Infection of ascitic fluid in a cirrhotic patient",
			BaseProbability: 0.10,
			WindowMin:       30, WindowMax: 240,
			Criteria: map[string]float64{"temp_above": 38.0, "hr_above": 100},
			Prevents: []string{"antibiotics", "cefotaxime", "diagnostic_paracentesis", "ascitic_fluid_analysis"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, the patient's abdomen is becoming more tender and distended. Temperature spiking to {temp}C. Abdominal guarding present. Could be SBP!",
		},
		{
			Name:            "Variceal Rupture",
			Description:     "Esophageal variceal hemorrhage with massive hematemesis in portal hypertension",
			BaseProbability: 0.10,
			WindowMin:       15, WindowMax: 120,
			Criteria: map[string]float64{"hr_above": 120, "bp_systolic_below": 85},
			Prevents: []string{"octreotide", "terlipressin", "sengstaken_tube", "endoscopy", "band_ligation"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Torrential hematemesis — bright red blood everywhere! Patient is going into shock — HR {hr}, BP {bp_systolic}/{bp_diastolic}! Known varices — this is a bleed!",
		},
	},

	"emergency": {
		{
			Name:            "Hemorrhagic Shock",
			Description:     "Class III/IV hemorrhagic shock from ongoing blood loss",
			BaseProbability: 0.15,
			WindowMin:       15, WindowMax: 120,
			Criteria: map[string]float64{"hr_above": 120, "bp_systolic_below": 80},
			Prevents: []string{"iv_fluids", "blood_transfusion", "crossmatch", "massive_transfusion", "surgical_consult"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient is tachycardic at {hr}, BP is {bp_systolic}/{bp_diastolic}, cold and clammy! Altered consciousness! This is Class III shock — we need blood NOW!",
		},
		{
			Name:            "Anaphylaxis",
			Description:     "Severe systemic allergic reaction with airway compromise and cardiovascular collapse",
			BaseProbability: 0.05,
			WindowMin:       5, WindowMax: 45,
			Criteria: map[string]float64{"bp_systolic_below": 90, "spo2_below": 92},
			Prevents: []string{"adrenaline", "epinephrine", "hydrocortisone", "chlorpheniramine", "nebulization"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Sudden urticaria, tongue swelling, stridor developing! BP crashing to {bp_systolic}/{bp_diastolic}! ANAPHYLAXIS — need adrenaline STAT!",
		},
		{
			Name:            "Rhabdomyolysis — Acute Kidney Injury",
			Description:     "Myoglobin release causing acute kidney injury with dark urine",
			BaseProbability: 0.08,
			WindowMin:       60, WindowMax: 360,
			Criteria: map[string]float64{"hr_above": 100},
			Prevents: []string{"iv_fluids", "aggressive_hydration", "normal_saline", "alkalinization"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, patient's urine has turned dark brown — looks like cola. Muscles are very tender. I suspect rhabdomyolysis — we need to push fluids before the kidneys fail!",
		},
		{
			Name:            "Compartment Syndrome",
			Description:     "Rising intra-compartmental pressure threatening limb viability",
			BaseProbability: 0.08,
			WindowMin:       30, WindowMax: 240,
			Criteria: map[string]float64{"hr_above": 100},
			Prevents: []string{"fasciotomy", "orthopedic_consult", "surgical_consult", "cast_removal", "elevation"},
			Urgency:  UrgencyCritical,
			Effect:   EffectDeteriorating,
			Message:  "Doctor! Patient screaming with pain out of proportion. Limb is tense and swollen. Pain on passive stretch! Pulses getting weak — compartment syndrome! We need surgery!",
		},
	},

	"nephrology": {
		{
			Name:            "Hyperkalemia — Cardiac Arrest",
			Description:     "Lethal arrhythmia from critically elevated serum potassium",
			BaseProbability: 0.12,
			WindowMin:       30, WindowMax: 180,
			Criteria: map[string]float64{"hr_below": 50},
			Prevents: []string{"calcium_gluconate", "insulin_dextrose", "salbutamol", "kayexalate", "sodium_bicarbonate", "dialysis"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! ECG showing tall peaked T waves and widening QRS! HR is dropping — {hr}! Potassium must be dangerously high. Patient is getting bradycardic!",
		},
		{
			Name:            "Flash Pulmonary Edema",
			Description:     "Acute pulmonary edema from fluid overload in oliguric renal failure",
			BaseProbability: 0.12,
			WindowMin:       30, WindowMax: 240,
			Criteria: map[string]float64{"spo2_below": 90, "rr_above": 28},
			Prevents: []string{"furosemide", "dialysis", "fluid_restriction", "niv", "bipap", "oxygen"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient can't breathe — sitting upright, pink frothy sputum! SpO2 is {spo2}%! Fluid overload — the kidneys aren't making urine. We need urgent dialysis or diuretics!",
		},
		{
			Name:            "Uremic Encephalopathy",
			Description:     "Altered consciousness from accumulation of uremic toxins",
			BaseProbability: 0.08,
			WindowMin:       60, WindowMax: 360,
			Prevents: []string{"dialysis", "hemodialysis"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, patient is confused, drowsy, and has asterixis. Breath smells uremic. Creatinine must be very high. I think the toxins are affecting the brain!",
		},
	},

	"endocrinology": {
		{
			Name:            "Thyroid Storm",
			Description:     "Life-threatening thyrotoxicosis with hyperpyrexia and tachycardia",
			BaseProbability: 0.10,
			WindowMin:       30, WindowMax: 180,
			Criteria: map[string]float64{"hr_above": 140, "temp_above": 39.0},
			Prevents: []string{"propranolol", "beta_blocker", "ptu", "methimazole", "lugol_iodine", "hydrocortisone"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! HR is {hr}, temperature is {temp}C and climbing! Patient is agitated, tremulous, and drenched in sweat. Thyroid storm — we need beta-blockers and PTU NOW!",
		},
		{
			Name:            "Adrenal Crisis",
			Description:     "Acute adrenal insufficiency with refractory hypotension and shock",
			BaseProbability: 0.08,
			WindowMin:       30, WindowMax: 180,
			Criteria: map[string]float64{"bp_systolic_below": 80},
			Prevents: []string{"hydrocortisone", "steroid", "dexamethasone", "iv_fluids", "fludrocortisone"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! BP is {bp_systolic}/{bp_diastolic} and NOT responding to IV fluids at all! Patient is hyperpigmented and severely hypotensive. Could this be adrenal crisis?",
		},
		{
			Name:            "Severe Hypoglycemia — Seizure/Coma",
			Description:     "Critical hypoglycemia causing seizures or loss of consciousness",
			BaseProbability: 0.10,
			WindowMin:       15, WindowMax: 120,
			Criteria: map[string]float64{"hr_above": 100},
			Prevents: []string{"dextrose", "d25", "d50", "glucagon", "glucose", "blood_sugar_check"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient is having a seizure! Cold, sweaty, and unresponsive! Glucometer shows 28 mg/dL — critically low sugar! Give IV dextrose STAT!",
		},
		{
			Name:            "Cerebral Edema in DKA",
			Description:     "Brain swelling from too-rapid correction of DKA",
			BaseProbability: 0.06,
			WindowMin:       120, WindowMax: 480,
			Criteria: map[string]float64{"bp_systolic_above": 140},
			Prevents: []string{"gradual_correction", "slow_insulin", "monitoring", "mannitol", "hypertonic_saline"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient was improving but now suddenly has severe headache, vomiting, and decreasing consciousness! Pupils are sluggish. I think it's cerebral edema from DKA correction!",
		},
	},

	"pediatrics": {
		{
			Name:            "Febrile Seizure — Complex",
			Description:     "Prolonged or focal seizure triggered by high fever in a child",
			BaseProbability: 0.12,
			WindowMin:       10, WindowMax: 90,
			Criteria: map[string]float64{"temp_above": 39.0, "hr_above": 140},
			Prevents: []string{"paracetamol", "ibuprofen", "tepid_sponging", "diazepam", "midazolam", "antipyretic"},
			Urgency:  UrgencyCritical,
			Effect:   EffectDeteriorating,
			Message:  "Doctor! The child is seizing — whole body shaking, eyes rolled up! Mother is panicking! Temperature was {temp}C. It's been going on for 3 minutes!",
		},
		{
			Name:            "Dehydration Shock",
			Description:     "Severe dehydration progressing to hypovolemic shock in a child",
			BaseProbability: 0.15,
			WindowMin:       30, WindowMax: 180,
			Criteria: map[string]float64{"hr_above": 150, "bp_systolic_below": 70},
			Prevents: []string{"iv_fluids", "ors", "normal_saline", "ringer_lactate", "bolus"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Child is lethargic with sunken eyes, dry mouth, and no tears! Skin turgor very poor. CRT >4 seconds. HR is {hr}. This child is in shock!",
		},
		{
			Name:            "Reye Syndrome",
			Description:     "Hepatic failure and encephalopathy following viral illness with aspirin use",
			BaseProbability: 0.03,
			WindowMin:       60, WindowMax: 360,
			Prevents: []string{"avoid_aspirin", "supportive_care", "mannitol", "icu_transfer"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Child was recovering but now has persistent vomiting and is becoming confused. Liver is enlarged and tender. Was aspirin given? I'm worried about Reye syndrome!",
		},
		{
			Name:            "Kernicterus Progression",
			Description:     "Bilirubin encephalopathy with opisthotonus in a neonate",
			BaseProbability: 0.06,
			WindowMin:       120, WindowMax: 480,
			Prevents: []string{"phototherapy", "exchange_transfusion", "bilirubin_monitoring"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! The baby is arching backward — opisthotonus! High-pitched cry, not feeding. The jaundice has deepened. Bilirubin must be dangerously high — kernicterus!",
		},
	},

	"obstetrics": {
		{
			Name:            "Eclampsia",
			Description:     "Tonic-clonic seizures in pre-eclampsia with risk of maternal and fetal death",
			BaseProbability: 0.12,
			WindowMin:       15, WindowMax: 180,
			Criteria: map[string]float64{"bp_systolic_above": 160},
			Prevents: []string{"magnesium_sulphate", "mgso4", "labetalol", "nifedipine", "antihypertensive"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! The patient is seizing — eclampsia! BP was {bp_systolic}/{bp_diastolic}! She needs magnesium sulphate immediately! Fetal heart rate is dipping!",
		},
		{
			Name:            "DIC in Obstetrics",
			Description:     "Consumptive coagulopathy from placental abruption or HELLP",
			BaseProbability: 0.06,
			WindowMin:       30, WindowMax: 240,
			Criteria: map[string]float64{"hr_above": 120, "bp_systolic_below": 90},
			Prevents: []string{"blood_transfusion", "ffp", "cryoprecipitate", "platelet_transfusion", "delivery"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Uncontrollable bleeding from all IV sites! Blood not clotting in the tube! Uterus is not contracting. This is DIC — we need blood products STAT!",
		},
		{
			Name:            "Amniotic Fluid Embolism",
			Description:     "Amniotic fluid entering maternal circulation causing cardiorespiratory collapse",
			BaseProbability: 0.03,
			WindowMin:       15, WindowMax: 120,
			Criteria: map[string]float64{"spo2_below": 88, "bp_systolic_below": 80},
			Prevents: []string{"supportive_care", "intubation", "vasopressor", "blood_products"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient suddenly collapsed — can't breathe, cyanotic, SpO2 is {spo2}%! Hypotensive at {bp_systolic}/{bp_diastolic}! Amniotic fluid embolism — CODE BLUE!",
		},
		{
			Name:            "Uterine Rupture",
			Description:     "Catastrophic rupture of the uterine wall during labor",
			BaseProbability: 0.04,
			WindowMin:       30, WindowMax: 180,
			Criteria: map[string]float64{"hr_above": 120, "bp_systolic_below": 90},
			Prevents: []string{"monitoring", "cesarean_section", "surgical_consult", "oxytocin_stop"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Sudden severe abdominal pain — patient screaming! Contractions have stopped but there's a bulge in the abdomen. Fetal heart lost! Uterine rupture — we need emergency surgery!",
		},
	},

	"hematology": {
		{
			Name:            "Massive Hemorrhage",
			Description:     "Life-threatening bleeding from severe thrombocytopenia or coagulopathy",
			BaseProbability: 0.12,
			WindowMin:       30, WindowMax: 240,
			Criteria: map[string]float64{"hr_above": 120, "bp_systolic_below": 85},
			Prevents: []string{"platelet_transfusion", "blood_transfusion", "ffp", "tranexamic_acid"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Massive epistaxis and gum bleeding won't stop! Now blood in urine and stool! BP is {bp_systolic}/{bp_diastolic}, HR {hr}! We need platelets and blood urgently!",
		},
		{
			Name:            "Tumor Lysis Syndrome",
			Description:     "Metabolic emergency from rapid cell death after chemotherapy",
			BaseProbability: 0.10,
			WindowMin:       60, WindowMax: 360,
			Criteria: map[string]float64{"hr_above": 100},
			Prevents: []string{"rasburicase", "allopurinol", "iv_fluids", "alkalinization", "monitoring"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, patient is having muscle cramps, palpitations, and reduced urine output after chemotherapy. ECG shows peaked T waves! I think it's tumor lysis syndrome!",
		},
		{
			Name:            "Febrile Neutropenia — Sepsis",
			Description:     "Overwhelming infection in a neutropenic patient progressing to sepsis",
			BaseProbability: 0.15,
			WindowMin:       15, WindowMax: 120,
			Criteria: map[string]float64{"temp_above": 38.3, "hr_above": 100},
			Prevents: []string{"antibiotics", "empirical_antibiotics", "blood_culture", "piperacillin_tazobactam", "meropenem"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Neutropenic patient spiking fever of {temp}C with rigors! HR is {hr}. This is febrile neutropenia — needs broad-spectrum antibiotics within the hour or we'll lose him!",
		},
		{
			Name:            "Hyperviscosity Syndrome",
			Description:     "Blood hyperviscosity from high paraprotein levels",
			BaseProbability: 0.06,
			WindowMin:       60, WindowMax: 300,
			Criteria: map[string]float64{"bp_systolic_above": 160},
			Prevents: []string{"plasmapheresis", "plasma_exchange", "hydration"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, patient complains of blurred vision, headache, and confusion. Fundoscopy shows engorged veins and hemorrhages. Blood is 'thick' — hyperviscosity syndrome!",
		},
	},

	"psychiatry": {
		{
			Name:            "Neuroleptic Malignant Syndrome",
			Description:     "Life-threatening reaction to antipsychotics with hyperthermia and rigidity",
			BaseProbability: 0.06,
			WindowMin:       60, WindowMax: 480,
			Criteria: map[string]float64{"temp_above": 39.5, "hr_above": 120},
			Prevents: []string{"stop_antipsychotic", "dantrolene", "bromocriptine", "cooling", "icu_transfer"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient on antipsychotics is rigid as a board! Temperature is {temp}C, HR {hr}, profusely sweating. Lead-pipe rigidity everywhere. NMS — stop the antipsychotic!",
		},
		{
			Name:            "Serotonin Syndrome",
			Description:     "Serotonin toxicity from drug interaction with agitation and clonus",
			BaseProbability: 0.06,
			WindowMin:       30, WindowMax: 240,
			Criteria: map[string]float64{"temp_above": 38.5, "hr_above": 110},
			Prevents: []string{"stop_serotonergic", "cyproheptadine", "benzodiazepine", "cooling"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor, patient is agitated, tremulous, with clonus at the ankles. Pupils are dilated. Temperature rising to {temp}C. Multiple serotonergic drugs on the chart — serotonin syndrome!",
		},
		{
			Name:            "Violent Agitation Episode",
			Description:     "Acute behavioral emergency with risk of harm to self or others",
			BaseProbability: 0.10,
			WindowMin:       10, WindowMax: 120,
			Criteria: map[string]float64{"hr_above": 110},
			Prevents: []string{"haloperidol", "lorazepam", "midazolam", "de_escalation", "restraint"},
			Urgency:  UrgencyUrgent,
			Effect:   EffectDeteriorating,
			Message:  "Doctor! Patient has become violently agitated — throwing things, threatening staff! Two nurses needed to restrain. Screaming that people are trying to kill him. We need sedation NOW!",
		},
	},

	"dermatology": {
		{
			Name:            "SJS Progression to TEN",
			Description:     "Stevens-Johnson syndrome progressing to toxic epidermal necrolysis",
			BaseProbability: 0.10,
			WindowMin:       60, WindowMax: 360,
			Criteria: map[string]float64{"temp_above": 38.5, "hr_above": 100},
			Prevents: []string{"stop_offending_drug", "icu_transfer", "cyclosporine", "ivig", "wound_care", "fluid_resuscitation"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Skin is sloughing off in sheets — Nikolsky sign positive everywhere! Mucosal involvement — eyes, mouth, genitals. This has progressed to TEN — needs burns unit/ICU!",
		},
		{
			Name:            "Secondary Sepsis from Skin",
			Description:     "Overwhelming infection through denuded skin barrier",
			BaseProbability: 0.08,
			WindowMin:       60, WindowMax: 360,
			Criteria: map[string]float64{"temp_above": 38.5, "hr_above": 110, "bp_systolic_below": 90},
			Prevents: []string{"antibiotics", "wound_care", "barrier_nursing", "iv_fluids"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient with skin lesions is now spiking to {temp}C with rigors! BP dropping to {bp_systolic}/{bp_diastolic}. Wounds look infected. Sepsis through the skin!",
		},
		{
			Name:            "Airway Compromise from Angioedema",
			Description:     "Progressive angioedema threatening airway patency",
			BaseProbability: 0.06,
			WindowMin:       10, WindowMax: 90,
			Criteria: map[string]float64{"spo2_below": 92, "rr_above": 24},
			Prevents: []string{"adrenaline", "epinephrine", "hydrocortisone", "intubation", "tracheostomy"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Lips and tongue are massively swollen! Patient is developing stridor — can barely talk! SpO2 falling to {spo2}%. We may need to secure the airway!",
		},
	},

	"orthopedics": {
		{
			Name:            "Fat Embolism Syndrome",
			Description:     "Fat embolism from long-bone fracture causing respiratory failure and petechial rash",
			BaseProbability: 0.08,
			WindowMin:       720, WindowMax: 2880,
			Criteria: map[string]float64{"spo2_below": 90, "hr_above": 110, "rr_above": 24},
			Prevents: []string{"early_fixation", "fracture_stabilization", "oxygen", "supportive_care"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Post-fracture patient suddenly confused, tachypneic, SpO2 dropped to {spo2}%! Petechial rash on chest and conjunctivae. Classic fat embolism syndrome!",
		},
		{
			Name:            "Compartment Syndrome",
			Description:     "Elevated intra-compartmental pressure after fracture threatening limb viability",
			BaseProbability: 0.10,
			WindowMin:       60, WindowMax: 480,
			Criteria: map[string]float64{"hr_above": 100},
			Prevents: []string{"fasciotomy", "cast_bivalve", "cast_removal", "elevation", "orthopedic_consult"},
			Urgency:  UrgencyCritical,
			Effect:   EffectDeteriorating,
			Message:  "Doctor! Patient's limb pain is excruciating and out of proportion! 5 P's — Pain on passive stretch, paresthesias! Compartment is rock hard. We need fasciotomy before we lose the limb!",
		},
		{
			Name:            "Deep Vein Thrombosis / Pulmonary Embolism",
			Description:     "DVT with embolization to pulmonary vasculature after immobilization",
			BaseProbability: 0.08,
			WindowMin:       360, WindowMax: 4320,
			Criteria: map[string]float64{"hr_above": 110, "spo2_below": 92, "rr_above": 22},
			Prevents: []string{"dvt_prophylaxis", "enoxaparin", "heparin", "early_mobilization", "compression_stockings"},
			Urgency:  UrgencyCritical,
			Effect:   EffectCritical,
			Message:  "Doctor! Patient suddenly short of breath, chest pain, HR is {hr}! SpO2 dropped to {spo2}%. Calf is swollen. Post-immobilization — I think this is a PE!",
		},
	},
}

// crossCutting complications can occur in any specialty, at damped base
// probability.
var crossCutting = []string{"Anaphylaxis", "Hemorrhagic Shock"}

const crossCuttingDamping = 0.3

// diagnosisBoosts raises base probabilities of complications tied to the
// working diagnosis. When several keywords match the same complication, the
// highest multiplier wins. Boosted bases are capped at 0.5.
var diagnosisBoosts = map[string]map[string]float64{
	"stemi":         {"Cardiogenic Shock": 2.0, "Ventricular Tachycardia": 1.8, "Cardiac Arrest — VF/Pulseless VT": 1.5},
	"nstemi":        {"Cardiogenic Shock": 1.3, "Acute Heart Failure / Pulmonary Edema": 1.5},
	"heart failure": {"Acute Heart Failure / Pulmonary Edema": 2.0, "Cardiogenic Shock": 1.5},
	"pneumonia":     {"Respiratory Failure — Type 1": 1.8, "Septic Shock": 1.5, "ARDS Development": 1.5},
	"copd":          {"Respiratory Failure — Type 1": 1.5},
	"asthma":        {"Respiratory Failure — Type 1": 2.0},
	"dengue":        {"Dengue Hemorrhagic Manifestations": 2.5, "Disseminated Intravascular Coagulation": 1.5},
	"malaria":       {"Septic Shock": 1.3, "Multi-Organ Dysfunction": 1.5},
	"sepsis":        {"Septic Shock": 2.0, "Multi-Organ Dysfunction": 1.8, "Disseminated Intravascular Coagulation": 1.5},
	"meningitis":    {"Raised ICP — Deterioration": 1.8, "Status Epilepticus": 1.5, "Cerebral Herniation": 1.3},
	"stroke":        {"Cerebral Herniation": 2.0, "Raised ICP — Deterioration": 1.8, "Status Epilepticus": 1.3},
	"cirrhosis":     {"Variceal Rupture": 2.0, "Hepatic Encephalopathy": 2.0, "Spontaneous Bacterial Peritonitis": 2.0},
	"gi bleed":      {"Massive Upper GI Bleed": 2.5, "Variceal Rupture": 1.5},
	"dka":           {"Cerebral Edema in DKA": 2.0, "Severe Hypoglycemia — Seizure/Coma": 1.5},
	"thyroid storm": {"Thyroid Storm": 2.5},
	"addison":       {"Adrenal Crisis": 2.5},
	"pre-eclampsia": {"Eclampsia": 2.5, "DIC in Obstetrics": 1.5},
	"eclampsia":     {"Eclampsia": 2.0, "DIC in Obstetrics": 1.8},
	"leukemia":      {"Tumor Lysis Syndrome": 2.0, "Febrile Neutropenia — Sepsis": 2.0},
	"lymphoma":      {"Tumor Lysis Syndrome": 2.0, "Febrile Neutropenia — Sepsis": 1.5},
	"fracture":      {"Fat Embolism Syndrome": 2.0, "Compartment Syndrome": 1.8, "Deep Vein Thrombosis / Pulmonary Embolism": 1.5},
	"ckd":           {"Hyperkalemia — Cardiac Arrest": 2.0, "Flash Pulmonary Edema": 1.8, "Uremic Encephalopathy": 1.5},
	"aki":           {"Hyperkalemia — Cardiac Arrest": 1.8, "Flash Pulmonary Edema": 1.5},
	"sjs":           {"SJS Progression to TEN": 2.5, "Secondary Sepsis from Skin": 1.8},
	"nms":           {"Neuroleptic Malignant Syndrome": 2.5},
}

const maxBoostedBase = 0.5

// Distraction is a cross-patient interruption testing the student's ability
// to prioritize. Distractions carry no trajectory effect.
type Distraction struct {
	Name        string
	Description string
	WindowMin   int
	WindowMax   int
	Probability float64
	Message     string
}

var distractions = []Distraction{
	{
		Name:        "Another Patient Emergency",
		Description: "Nurse asks for help with another patient crashing in the ward",
		WindowMin:   30, WindowMax: 180,
		Probability: 0.03,
		Message:     "Doctor, sorry to interrupt — the patient in bed 4 is having chest pain and looks unwell. Can you come quickly? I know you're busy here but...",
	},
	{
		Name:        "Relative Confrontation",
		Description: "Angry family member demands to speak with the doctor",
		WindowMin:   20, WindowMax: 120,
		Probability: 0.04,
		Message:     "Doctor, the patient's family is at the nursing station and they're very upset. They want to know why nothing has been done. The son is threatening to complain to the superintendent.",
	},
	{
		Name:        "Phone Call from Lab",
		Description: "Lab technician calls with a panic value that needs immediate attention",
		WindowMin:   30, WindowMax: 180,
		Probability: 0.05,
		Message:     "Doctor, urgent call from the lab — they've flagged a critical value on one of your patient's samples. They need a verbal acknowledgement and want to know if you want to repeat the test.",
	},
	{
		Name:        "Equipment Failure",
		Description: "Critical equipment malfunctions",
		WindowMin:   15, WindowMax: 120,
		Probability: 0.03,
		Message:     "Doctor, the pulse oximeter seems to be giving erratic readings and the backup monitor is also not working. Should we shift the patient to a bed with a working monitor?",
	},
	{
		Name:        "Blood Bank Delay",
		Description: "Blood bank notifies of delay in cross-matched blood",
		WindowMin:   30, WindowMax: 120,
		Probability: 0.04,
		Message:     "Doctor, blood bank called — the requested blood group is in short supply. They can arrange one unit but it will take another 2 hours. Should we call for donors?",
	},
}

// definitionIn finds a named definition within one specialty table. The same
// clinical name can appear in several specialties with different windows and
// prevention lists, so every lookup goes through the candidate's source table.
func definitionIn(specialty, name string) (Definition, bool) {
	for _, d := range specialtyComplications[specialty] {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Specialties lists the supported specialty keys, for CLI inspection.
func Specialties() []string {
	keys := make([]string, 0, len(specialtyComplications))
	for k := range specialtyComplications {
		keys = append(keys, k)
	}
	return keys
}

// BySpecialty returns the complication profile of a specialty, or nil.
func BySpecialty(specialty string) []Definition {
	return specialtyComplications[specialty]
}

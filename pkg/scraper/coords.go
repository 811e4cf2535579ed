package scraper

// coord is a latitude/longitude pair.
type coord struct {
	Lat float64
	Lng float64
}

// resortCoords maps resort slugs to known coordinates. The state report
// tables don't carry coordinates, so this table covers the major
// resorts; anything missing falls back to coordinates embedded in the
// individual resort page scripts.
var resortCoords = map[string]coord{
	"vail":                        {39.6403, -106.3742},
	"breckenridge":                {39.4817, -106.0384},
	"park-city":                   {40.6514, -111.5080},
	"mammoth-mountain":            {37.6308, -119.0326},
	"jackson-hole":                {43.5875, -110.8279},
	"big-sky":                     {45.2618, -111.4015},
	"aspen-snowmass":              {39.2084, -106.9490},
	"steamboat":                   {40.4572, -106.8045},
	"telluride":                   {37.9375, -107.8123},
	"taos":                        {36.5969, -105.4544},
	"squaw-valley-alpine-meadows": {39.1969, -120.2358},
	"heavenly":                    {38.9353, -119.9400},
	"kirkwood":                    {38.6850, -120.0653},
	"northstar":                   {39.2747, -120.1210},
	"sugar-bowl":                  {39.3047, -120.3344},
	"mt-bachelor":                 {43.9792, -121.6886},
	"crystal-mountain-washington": {46.9282, -121.5045},
	"stevens-pass":                {47.7448, -121.0890},
	"sun-valley":                  {43.6806, -114.4083},
	"alta":                        {40.5884, -111.6386},
	"snowbird":                    {40.5830, -111.6538},
	"deer-valley":                 {40.6375, -111.4783},
	"brighton":                    {40.5980, -111.5832},
	"killington":                  {43.6045, -72.8201},
	"stowe":                       {44.5303, -72.7814},
	"sugarbush":                   {44.1357, -72.9012},
	"jay-peak":                    {44.9275, -72.5050},
	"sunday-river":                {44.4736, -70.8567},
	"sugarloaf":                   {45.0314, -70.3131},
	"loon-mountain":               {44.0364, -71.6214},
	"cannon-mountain":             {44.1567, -71.6986},
	"okemo":                       {43.4017, -72.7170},
	"stratton":                    {43.1136, -72.9081},
	"mount-snow":                  {42.9601, -72.9204},
	"whiteface":                   {44.3656, -73.9026},
	"gore-mountain":               {43.6717, -74.0067},
	"hunter-mountain":             {42.2036, -74.2312},
	"camelback":                   {41.0519, -75.3567},
	"blue-mountain-pennsylvania":  {40.8231, -75.5156},
	"snowshoe":                    {38.4125, -79.9942},
	"wintergreen":                 {37.9367, -78.9481},
	"winterplace":                 {37.5978, -81.1153},
	"boyne-mountain":              {45.1628, -84.9364},
	"crystal-mountain-michigan":   {44.5250, -85.9986},
	"nubs-nob":                    {45.4697, -84.9236},
	"big-bear":                    {34.2358, -116.8906},
	"snow-summit":                 {34.2311, -116.8917},
	"mountain-high":               {34.3717, -117.6908},
	"arapahoe-basin":              {39.6425, -105.8719},
	"keystone":                    {39.6064, -105.9519},
	"copper-mountain":             {39.5022, -106.1497},
	"winter-park":                 {39.8841, -105.7628},
	"loveland":                    {39.6800, -105.8978},
	"eldora":                      {39.9375, -105.5828},
	"crested-butte":               {38.8986, -106.9650},
	"wolf-creek":                  {37.4728, -106.7936},
	"purgatory":                   {37.6303, -107.8142},
	"monarch-mountain":            {38.5125, -106.3322},
	"ski-santa-fe":                {35.7953, -105.8036},
	"angel-fire":                  {36.3939, -105.2847},
	"red-river":                   {36.7064, -105.4072},
	"sipapu":                      {36.0947, -105.5031},
	"ski-apache":                  {33.3989, -105.7928},
	"snowbasin":                   {41.2158, -111.8569},
	"powder-mountain":             {41.3789, -111.7811},
	"brian-head":                  {37.7025, -112.8497},
	"sundance":                    {40.3925, -111.5878},
	"whitefish-mountain":          {48.4836, -114.3553},
	"red-lodge":                   {45.1853, -109.3417},
	"bridger-bowl":                {45.8175, -110.8978},
	"grand-targhee":               {43.7903, -110.9581},
	"schweitzer":                  {48.3675, -116.6222},
	"silver-mountain":             {47.5383, -116.1128},
	"lookout-pass":                {47.4544, -115.7072},
	"bogus-basin":                 {43.7647, -116.1028},
	"brundage":                    {45.0422, -116.1531},
	"timberline-lodge":            {45.3306, -121.7108},
	"mt-hood-meadows":             {45.3311, -121.6656},
	"mt-hood-skibowl":             {45.3033, -121.7578},
	"mt-ashland":                  {42.0828, -122.7178},
	"anthony-lakes":               {44.9617, -118.2306},
	"mission-ridge":               {47.2931, -120.4017},
	"snoqualmie-pass":             {47.4206, -121.4153},
	"mt-baker":                    {48.8617, -121.6650},
	"white-pass":                  {46.6375, -121.3900},
	"49-degrees-north":            {48.3014, -117.5617},
	"diamond-peak":                {39.2531, -119.9206},
	"mt-rose":                     {39.3147, -119.8856},
	"sierra-at-tahoe":             {38.8000, -120.0800},
	"boreal":                      {39.3322, -120.3478},
	"soda-springs":                {39.3197, -120.3800},
	"donner-ski-ranch":            {39.3183, -120.3306},
	"homewood":                    {39.0856, -120.1608},
	"alpine-meadows":              {39.1644, -120.2386},
	"palisades-tahoe":             {39.1969, -120.2358},
	"dodge-ridge":                 {38.1889, -119.9556},
	"bear-valley":                 {38.4681, -120.0417},
	"june-mountain":               {37.7675, -119.0903},
	"china-peak":                  {37.2347, -119.1572},
	"snow-valley":                 {34.2247, -117.0356},
	"mount-baldy":                 {34.2383, -117.6458},

	// New Hampshire
	"attitash":                 {44.0828, -71.2297},
	"black-mountain":           {44.0575, -71.1511},
	"bretton-woods":            {44.2586, -71.4392},
	"cranmore-mountain-resort": {44.0542, -71.1086},
	"crotched-mountain":        {43.0222, -71.8742},
	"dartmouth-skiway":         {43.7856, -72.0869},
	"gunstock":                 {43.5453, -71.3636},
	"king-pine":                {43.8583, -71.1522},
	"mount-sunapee":            {43.3256, -72.0817},
	"pats-peak":                {43.0761, -71.7828},
	"ragged-mountain-resort":   {43.4756, -71.8539},
	"tenney-mountain":          {43.8086, -71.7511},
	"waterville-valley":        {43.9506, -71.5281},
	"whaleback-mountain":       {43.6083, -72.1233},
	"wildcat-mountain":         {44.2633, -71.2392},

	// Vermont
	"bolton-valley":          {44.4178, -72.8486},
	"bromley-mountain":       {43.2178, -72.9397},
	"burke-mountain":         {44.5767, -71.8978},
	"killington-resort":      {43.6045, -72.8201},
	"mad-river-glen":         {44.2039, -72.9192},
	"magic-mountain":         {43.1908, -72.7839},
	"okemo-mountain-resort":  {43.4017, -72.7170},
	"pico-mountain":          {43.6614, -72.8439},
	"saskadena-six":          {43.8806, -72.5356},
	"smugglers-notch-resort": {44.5917, -72.7858},
	"stowe-mountain":         {44.5303, -72.7814},
	"stratton-mountain":      {43.1136, -72.9081},

	// Maine
	"big-moose-mountain":      {45.3619, -69.5411},
	"black-mountain-of-maine": {44.4597, -70.7411},
	"camden-snow-bowl":        {44.2172, -69.1019},
	"lost-valley":             {44.1211, -70.2292},
	"mt-abram-ski-resort":     {44.3886, -70.4367},
	"new-hermon-mountain":     {44.8556, -68.9272},
	"pleasant-mountain":       {44.0533, -70.8758},
	"saddleback-inc":          {44.9406, -70.5011},

	// Massachusetts
	"berkshire-east":              {42.6272, -72.7583},
	"blue-hills-ski-area":         {42.2147, -71.1128},
	"bousquet-ski-area":           {42.4128, -73.2356},
	"bradford-ski-area":           {42.7600, -71.0856},
	"jiminy-peak":                 {42.5469, -73.2706},
	"nashoba-valley":              {42.5217, -71.4486},
	"otis-ridge-ski-area":         {42.1861, -73.0997},
	"ski-butternut":               {42.1858, -73.2978},
	"ski-ward":                    {42.2647, -71.7631},
	"wachusett-mountain-ski-area": {42.5036, -71.8869},

	// Connecticut
	"mohawk-mountain": {41.8367, -73.3150},
	"ski-sundown":     {41.9286, -72.9472},

	// New York
	"belleayre":        {42.1306, -74.5083},
	"bristol-mountain": {42.7328, -77.4139},
	"greek-peak":       {42.5022, -76.1517},
	"holiday-valley":   {42.2592, -78.6722},
	"windham-mountain": {42.2958, -74.2567},
}

// lookupCoords returns known coordinates for a resort slug.
func lookupCoords(slug string) (coord, bool) {
	c, ok := resortCoords[slug]
	return c, ok
}

package extraction

const systemPrompt = "You are an expert at parsing Singapore commercial/industrial property listings."

// The listings payload replaces {listings_json}. The model is told to tag
// every object with the originating listing_index because its output
// order cannot be trusted.
const batchPromptTemplate = `I will give you a list of property listings. For EACH listing, extract structured information.
Return a JSON array with one object per listing.

LISTINGS TO PROCESS:
{listings_json}

For each listing, extract:
{
    "listing_index": <0-based index matching the input "index" field>,
    "property_name": "Building/property name (e.g., 'Ubi Techpark', 'Sim Lim Tower', 'Northstar AMK') or null",
    "address": "Any address or location hint (e.g., 'Tuas Ave 1', 'opp Aljunied MRT', 'near Tai Seng', 'Mandai') or null",
    "property_type": "One of: Factory/Warehouse, Office, Shop, Mixed, Other",
    "property_subtype": "More specific type like 'B1', 'B2', 'ramp-up', or null",
    "transaction_type": "One of: Sale, Rent, Both, or null",
    "price": <numeric price in SGD, e.g. 3550000 for $3.55M, 14000 for $14K, or null>,
    "price_type": "One of: total, psf, per_month, or null",
    "gfa_sqft": <floor area in sqft as number, or null>,
    "lease_type": "Freehold, 999yr, 99yr, 60yr, 30yr, or null",
    "lease_balance_years": <remaining lease years as number, or null>,
    "floor_level": "Floor descriptor like 'Ground flr', 'B1', '3/STY', or null",
    "features": ["notable features like 'loading bay', 'high ceiling'"],
    "contact_name": "Contact person name or null",
    "contact_phone": "8-digit Singapore phone number or null",
    "is_owner": <true if text contains 'owner' or 'direct owner', false otherwise>,
    "is_agent": <true if text mentions an agency (PropNex, ERA, OrangeTee, Huttons, Dennis Wee) or indicates an agent, false otherwise>,
    "agency_name": "Agency name if mentioned, or null",
    "cobroke_allowed": <true or false if stated, else null>
}

IMPORTANT GUIDELINES:
- Look for ANY location hints: building names, street names, area names, landmarks like "opp MRT", "near", etc.
- Convert prices: "$3.55M" = 3550000, "$14K" = 14000, "$2.9xM" means approximately 2900000
- Phone numbers are 8 digits starting with 6, 8, or 9
- Return ONLY the JSON array, no other text.`
